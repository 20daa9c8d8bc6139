package model

// AccountStatus is computed from AdminUser flags and never stored.
type AccountStatus string

const (
	// AccountStatusBootstrapping: default credentials, email setup not done.
	AccountStatusBootstrapping AccountStatus = "bootstrapping"
	// AccountStatusAwaitingEmailSetup: set up, but the recovery email has not
	// been proven through a reset link.
	AccountStatusAwaitingEmailSetup AccountStatus = "awaiting_email_setup"
	AccountStatusActive             AccountStatus = "active"
)

// Blog post defaults applied when a field is left empty.
const (
	DefaultBlogAuthor   = "Doc'Trot Team"
	DefaultBlogCategory = "Général"
	BlogDateLayout      = "2006-01-02"
)
