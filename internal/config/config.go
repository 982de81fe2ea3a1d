package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	App             App             `mapstructure:",squash"`
	Server          Server          `mapstructure:",squash"`
	Database        Database        `mapstructure:",squash"`
	Upload          Upload          `mapstructure:",squash"`
	Plot            Plot            `mapstructure:",squash"`
	Pipeline        Pipeline        `mapstructure:",squash"`
	ReportRetention ReportRetention `mapstructure:",squash"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

type Server struct {
	Host           string   `mapstructure:"host"`
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type Database struct {
	DSN      string `mapstructure:"-"`
	Enabled  bool   `mapstructure:"database_enabled"`
	Driver   string `mapstructure:"database_driver"`
	Password string `mapstructure:"database_password"`
	URL      string `mapstructure:"database_url"`
	User     string `mapstructure:"database_user"`
}

type Upload struct {
	Dir         string   `mapstructure:"upload_dir"`
	MaxSizeMB   int64    `mapstructure:"upload_max_mb"`
	AllowedExts []string `mapstructure:"upload_allowed_exts"`
}

type Plot struct {
	Bins      int    `mapstructure:"plot_bins"`
	URLPrefix string `mapstructure:"plot_url_prefix"`
}

type Pipeline struct {
	DateLayout string `mapstructure:"rfm_date_layout"`
}

type ReportRetention struct {
	CronSchedule string `mapstructure:"report_retention_cron"`
	Days         int    `mapstructure:"report_retention_days"`
	Enabled      bool   `mapstructure:"report_retention_enabled"`
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")

	viper.SetDefault("DATABASE_ENABLED", false) // Sem banco os relatórios ficam em memória
	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "localhost:5432/rfm?sslmode=disable")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "root")

	viper.SetDefault("UPLOAD_DIR", "static/uploads")
	viper.SetDefault("UPLOAD_MAX_MB", 64)
	viper.SetDefault("UPLOAD_ALLOWED_EXTS", ".csv")

	viper.SetDefault("PLOT_BINS", 30)
	viper.SetDefault("PLOT_URL_PREFIX", "uploads")

	viper.SetDefault("RFM_DATE_LAYOUT", "2/1/2006 15:04") // dia/mês/ano hora:minuto

	viper.SetDefault("REPORT_RETENTION_CRON", "0 2 * * *") // Todos os dias às 2h da manhã
	viper.SetDefault("REPORT_RETENTION_DAYS", 7)
	viper.SetDefault("REPORT_RETENTION_ENABLED", false)

	viper.SetDefault("LOG_LEVEL", "debug")
}

func NewConfig() (*Config, error) {
	loadEnvFile() // ONLY LOCAL

	config := &Config{}

	SetDefaults()

	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logrus.Info("Usando variáveis carregadas pelo godotenv (viper não conseguiu ler .env):", err)
	} else {
		logrus.Info("Arquivo .env lido pelo Viper com sucesso")
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	config.Database.DSN = fmt.Sprintf(
		"%s://%s:%s@%s",
		config.Database.Driver,
		config.Database.User,
		config.Database.Password,
		config.Database.URL,
	)

	return config, nil
}

// Validate confere os valores que o pipeline e o servidor não conseguem corrigir sozinhos
func (c *Config) Validate() error {
	if c.Upload.Dir == "" {
		return fmt.Errorf("config: UPLOAD_DIR é obrigatório")
	}
	if c.Upload.MaxSizeMB <= 0 {
		return fmt.Errorf("config: UPLOAD_MAX_MB deve ser positivo, recebido %d", c.Upload.MaxSizeMB)
	}
	if c.Plot.Bins <= 0 {
		return fmt.Errorf("config: PLOT_BINS deve ser positivo, recebido %d", c.Plot.Bins)
	}
	if c.ReportRetention.Enabled && c.ReportRetention.Days <= 0 {
		return fmt.Errorf("config: REPORT_RETENTION_DAYS deve ser positivo, recebido %d", c.ReportRetention.Days)
	}
	return nil
}

// loadEnvFile procura um .env no diretório atual e nos diretórios acima
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	locations := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(filepath.Dir(cwd), ".env"),
		filepath.Join(cwd, "../../.env"),
	}

	for _, location := range locations {
		if err := godotenv.Load(location); err == nil {
			logrus.Info("Arquivo .env carregado com sucesso de:", location)
			return
		}
	}

	logrus.Debug("Nenhum arquivo .env encontrado, usando apenas variáveis de ambiente")
}
