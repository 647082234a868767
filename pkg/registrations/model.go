package registrations

// ClientRegistration is one installed instance of the bot in a Space
// organization. Created by the installation webhook and replaced wholesale
// on re-installation.
type ClientRegistration struct {
	ClientID     string // issued by the platform, unique per installation
	ClientSecret string
	ServerURL    string // base URL of the installing organization
	InstalledBy  string // profile id of the installing user, may be empty
}
