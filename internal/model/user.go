package model

// User represents an account row in the `users` table. Accounts are
// created once and never deleted; the balance is mutated only by paying
// for a reservation (debit) and canceling a paid reservation (refund),
// and must never go negative.
//
// Fields:
//
//	Username     – unique account name, the primary key.
//	Salt         – random per-account salt used for credential derivation.
//	PasswordHash – PBKDF2-derived hash of the password and salt.
//	Balance      – account balance in whole currency units, >= 0.
type User struct {
	Username     string // users.username
	Salt         []byte // users.salt
	PasswordHash []byte // users.password_hash
	Balance      int    // users.balance
}
