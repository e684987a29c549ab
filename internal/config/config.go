// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"github.com/alvinbaena/pwd-advisor/internal/util"
	"github.com/alvinbaena/pwd-advisor/pkg/breach"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"net/url"
	"reflect"
	"sort"
	"strings"
	"time"
)

// Advisor configures the password advisor service.
type Advisor struct {
	Port           uint16        `mapstructure:"PORT" validate:"required"`
	CheckerURL     string        `mapstructure:"CHECKER_URL" validate:"required,url"`
	CheckerTimeout time.Duration `mapstructure:"CHECKER_TIMEOUT" validate:"gt=0"`
	CheckerRetries int           `mapstructure:"CHECKER_RETRIES" validate:"gte=0,lte=10"`
	SelfTLS        bool          `mapstructure:"SELF_TLS"`
	TLSCert        string        `mapstructure:"TLS_CERT" validate:"required_with=TLSKey"`
	TLSKey         string        `mapstructure:"TLS_KEY" validate:"required_with=TLSCert"`
	Debug          bool          `mapstructure:"DEBUG"`
}

// Checker configures the breach lookup service.
type Checker struct {
	Port             uint16 `mapstructure:"PORT" validate:"required"`
	Store            string `mapstructure:"STORE" validate:"oneof=gcs postgres sqlite"`
	GcsFile          string `mapstructure:"GCS_FILE" validate:"required_if=Store gcs"`
	SqliteFile       string `mapstructure:"SQLITE_FILE" validate:"required_if=Store sqlite"`
	DatabaseURL      string `mapstructure:"DATABASE_URL"`
	PostgresUser     string `mapstructure:"POSTGRES_USER"`
	PostgresPassword string `mapstructure:"POSTGRES_PASSWORD"`
	PostgresHost     string `mapstructure:"POSTGRES_HOST"`
	PostgresPort     string `mapstructure:"POSTGRES_PORT"`
	PostgresDB       string `mapstructure:"POSTGRES_DB"`
	SelfTLS          bool   `mapstructure:"SELF_TLS"`
	TLSCert          string `mapstructure:"TLS_CERT" validate:"required_with=TLSKey"`
	TLSKey           string `mapstructure:"TLS_KEY" validate:"required_with=TLSCert"`
	Debug            bool   `mapstructure:"DEBUG"`
}

// PostgresURL is DATABASE_URL, or a URL built from the POSTGRES_* values.
func (c Checker) PostgresURL() (string, error) {
	if c.DatabaseURL != "" {
		return c.DatabaseURL, nil
	}

	var missing []string
	for name, v := range map[string]string{
		"POSTGRES_USER":     c.PostgresUser,
		"POSTGRES_PASSWORD": c.PostgresPassword,
		"POSTGRES_DB":       c.PostgresDB,
	} {
		if v == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return "", fmt.Errorf("missing DB credentials: DATABASE_URL or %s", strings.Join(missing, ", "))
	}

	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.PostgresUser, c.PostgresPassword),
		Host:   fmt.Sprintf("%s:%s", c.PostgresHost, c.PostgresPort),
		Path:   "/" + c.PostgresDB,
	}
	return u.String(), nil
}

// Source is what store.Open expects for the configured store: the file for
// gcs and sqlite, the database URL for postgres.
func (c Checker) Source() (string, error) {
	switch c.Store {
	case "gcs":
		return c.GcsFile, nil
	case "sqlite":
		return c.SqliteFile, nil
	}

	return c.PostgresURL()
}

func advisorDefaults(v *viper.Viper) {
	v.SetDefault("PORT", 3100)
	v.SetDefault("CHECKER_URL", breach.DefaultURL)
	v.SetDefault("CHECKER_TIMEOUT", breach.DefaultTimeout)
	v.SetDefault("CHECKER_RETRIES", 0)
}

func checkerDefaults(v *viper.Viper) {
	v.SetDefault("PORT", 8000)
	v.SetDefault("STORE", "postgres")
	v.SetDefault("POSTGRES_HOST", "postgres")
	v.SetDefault("POSTGRES_PORT", "5432")
}

// LoadAdvisor reads the advisor configuration from the environment. Flags
// that were set on the command line take precedence.
func LoadAdvisor(flags *pflag.FlagSet) (config Advisor, err error) {
	err = load(&config, flags, advisorDefaults)
	return
}

// LoadChecker reads the checker configuration from the environment. Flags
// that were set on the command line take precedence.
func LoadChecker(flags *pflag.FlagSet) (config Checker, err error) {
	err = load(&config, flags, checkerDefaults)
	return
}

func load(config interface{}, flags *pflag.FlagSet, defaults func(*viper.Viper)) error {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	defaults(v)

	// This is to not require a config file to unmarshal Envs in a struct
	// https://github.com/spf13/viper/issues/188#issuecomment-399884438
	bindEnvs(v, flags, reflect.ValueOf(config).Elem().Interface())

	if err := v.Unmarshal(config); err != nil {
		return fmt.Errorf("reading configuration: %w", err)
	}

	return validate(config)
}

// bindEnvs binds every mapstructure key to its environment variable, and to
// the flag of the same name in kebab case (CHECKER_URL -> --checker-url).
func bindEnvs(v *viper.Viper, flags *pflag.FlagSet, iface interface{}, parts ...string) {
	ifv := reflect.ValueOf(iface)
	ift := reflect.TypeOf(iface)
	for i := 0; i < ift.NumField(); i++ {
		fv := ifv.Field(i)
		t := ift.Field(i)
		tv, ok := t.Tag.Lookup("mapstructure")
		if !ok {
			continue
		}
		switch fv.Kind() {
		case reflect.Struct:
			bindEnvs(v, flags, fv.Interface(), append(parts, tv)...)
		default:
			key := strings.Join(append(parts, tv), ".")
			_ = v.BindEnv(key)
			if flags != nil {
				if f := flags.Lookup(strings.ToLower(strings.ReplaceAll(key, "_", "-"))); f != nil {
					_ = v.BindPFlag(key, f)
				}
			}
		}
	}
}

func msgForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "required_if":
		if field, value, ok := strings.Cut(fe.Param(), " "); ok {
			return fmt.Sprintf("This field is required if %s is %s", util.ToScreamingSnakeCase(field), value)
		}
		return fmt.Sprintf("This field is required if %s", util.ToScreamingSnakeCase(fe.Param()))
	case "required_with":
		return fmt.Sprintf("This is field requires the presence of %s", util.ToScreamingSnakeCase(fe.Param()))
	case "oneof":
		return fmt.Sprintf("This field must be one of [%s]", fe.Param())
	case "url":
		return "This field must be a valid URL"
	case "gt":
		return fmt.Sprintf("This field must be greater than %s", fe.Param())
	case "gte", "lte":
		return fmt.Sprintf("This field is out of range (%s %s)", fe.Tag(), fe.Param())
	}
	return fe.Error() // default error
}

func validate(config interface{}) error {
	if err := validator.New().Struct(config); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			var msgs []string
			for _, fe := range ve {
				msgs = append(msgs, fmt.Sprintf("%s: %s", util.ToScreamingSnakeCase(fe.Field()), msgForTag(fe)))
			}

			return errors.New(strings.Join(msgs, ". "))
		}

		return fmt.Errorf("validating configuration from environment: %w", err)
	}

	return nil
}
