package courier

// Config represents the main config. Every field is sourceable from the
// environment through viper's key replacer, e.g. SMTP_PASSWORD or AUTH_TOKEN.
type Config struct {
	DB struct {
		Type string // "mongo" or "bolt"
		Path string // bolt database file
		URL  string // mongo connection URL
		Name string // mongo database name
	}

	HTTP struct {
		Addr    string
		BaseURL string // public base URL embedded in unsubscribe links
	}

	Auth struct {
		Token string // static bearer token guarding the operator endpoints
	}

	SMTP struct {
		Host     string
		Port     int
		Username string
		Password string
	}

	Storage struct {
		Bucket     string
		Region     string
		AccessKey  string
		SecretKey  string
		Endpoint   string // optional, for S3-compatible services
		ScratchDir string // root under which per-send scratch dirs are created
	}

	Newsletter struct {
		From    string
		Product struct {
			Name string
		}
		HMAC struct {
			Secret string // optional; signs unsubscribe links when set
		}
	}

	Sentry struct {
		DSN string
	}
}
