package extension

// Config holds the Radix extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.radix" or "radix" keys).
type Config struct {
	// DisableRoutes prevents HTTP route registration.
	DisableRoutes bool `json:"disable_routes" mapstructure:"disable_routes" yaml:"disable_routes"`

	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// BasePath is the URL prefix for radix routes (default: "/radix").
	BasePath string `json:"base_path" mapstructure:"base_path" yaml:"base_path"`

	// Currency is the single billing currency (default: "inr").
	Currency string `json:"currency" mapstructure:"currency" yaml:"currency"`

	// CompanyName and CompanyTagline appear on invoices and emails.
	CompanyName    string `json:"company_name" mapstructure:"company_name" yaml:"company_name"`
	CompanyTagline string `json:"company_tagline" mapstructure:"company_tagline" yaml:"company_tagline"`

	// Email configures the SMTP notifier. Email is disabled when Host is
	// empty.
	Email EmailConfig `json:"email" mapstructure:"email" yaml:"email"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// EmailConfig holds SMTP settings and the auto-send switches. The
// switches are expressed as disables so the YAML zero value keeps
// notifications on.
type EmailConfig struct {
	Host     string `json:"host" mapstructure:"host" yaml:"host"`
	Port     int    `json:"port" mapstructure:"port" yaml:"port"`
	Username string `json:"username" mapstructure:"username" yaml:"username"`
	Password string `json:"password" mapstructure:"password" yaml:"password"`
	UseTLS   bool   `json:"use_tls" mapstructure:"use_tls" yaml:"use_tls"`

	FromName    string `json:"from_name" mapstructure:"from_name" yaml:"from_name"`
	FromAddress string `json:"from_address" mapstructure:"from_address" yaml:"from_address"`
	AdminEmail  string `json:"admin_email" mapstructure:"admin_email" yaml:"admin_email"`

	DisableInvoiceOnGeneration bool `json:"disable_invoice_on_generation" mapstructure:"disable_invoice_on_generation" yaml:"disable_invoice_on_generation"`
	DisablePaymentConfirmation bool `json:"disable_payment_confirmation" mapstructure:"disable_payment_confirmation" yaml:"disable_payment_confirmation"`
	DisableReminderBeforeDue   bool `json:"disable_reminder_before_due" mapstructure:"disable_reminder_before_due" yaml:"disable_reminder_before_due"`

	// ReminderDaysBeforeDue is how many days before the due date payment
	// reminders fire (default: 3).
	ReminderDaysBeforeDue int `json:"reminder_days_before_due" mapstructure:"reminder_days_before_due" yaml:"reminder_days_before_due"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BasePath:       "/radix",
		Currency:       "inr",
		CompanyName:    "Radix",
		CompanyTagline: "The Root of Reliability",
		Email: EmailConfig{
			Port:                  587,
			ReminderDaysBeforeDue: 3,
		},
	}
}
