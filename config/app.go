package config

type App struct {
	Port            string `env:"APP_PORT" default:"8080"`
	DatabaseURL     string `env:"DATABASE_URL,required"`
	JWTSecret       string `env:"JWT_SECRET,required"`
	EmailJSService  string `env:"EMAILJS_SERVICE_ID"`
	EmailJSTemplate string `env:"EMAILJS_TEMPLATE_ID"`
	EmailJSUser     string `env:"EMAILJS_PUBLIC_KEY"`
	EmailJSToken    string `env:"EMAILJS_PRIVATE_KEY"`
	Env             string `env:"APP_ENV" default:"dev"`
}
