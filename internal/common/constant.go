package common

// AppName is used in prompts, the default database file name and backup
// headers.
const AppName = "passvault"

// Record namespaces and keys of the vault inside the record store.
const (
	VaultNamespace = "vault"
	UserKey        = "user"
	PasswordsKey   = "passwords"
)
