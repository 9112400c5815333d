package models

// AccountID is an opaque account identifier.
type AccountID string

// Credentials authenticate an account against its annotation server. The
// engine treats them as opaque: they are attached to outbound requests and
// never inspected.
type Credentials struct {
	Username string
	Password string
}

// Empty reports whether no credentials are present.
func (c Credentials) Empty() bool {
	return c.Username == "" && c.Password == ""
}

// Account is a library membership under which books and bookmarks are scoped.
type Account struct {
	ID       AccountID
	Provider string

	// AnnotationsURI is the account's annotation collection endpoint. An
	// empty value means the provider does not support server-side sync.
	AnnotationsURI string

	// SettingsURI is the patron settings endpoint used to probe and toggle
	// server-side sync.
	SettingsURI string

	Credentials Credentials

	// SyncPermitted is the local user preference gating sync.
	SyncPermitted bool
}

// SyncSupported reports whether the account's library exposes an annotation
// endpoint at all.
func (a Account) SyncSupported() bool {
	return a.AnnotationsURI != ""
}

// Profile is a local user identity owning one or more accounts.
type Profile struct {
	ID       string
	Name     string
	Accounts []Account
}

// Account returns the profile's account with the given ID, if any.
func (p Profile) Account(id AccountID) (Account, bool) {
	for _, a := range p.Accounts {
		if a.ID == id {
			return a, true
		}
	}
	return Account{}, false
}
