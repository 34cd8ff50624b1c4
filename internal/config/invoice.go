package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const DefaultIssuerNumber = "T5810180900550"

// InvoiceSettings are the issuing rules applied to every generated invoice.
type InvoiceSettings struct {
	IssuerNumber   string `mapstructure:"issuerNumber"`
	ReceiptDay     int    `mapstructure:"receiptDay"`
	PeriodStartDay int    `mapstructure:"periodStartDay"`
}

func DefaultInvoiceSettings() InvoiceSettings {
	return InvoiceSettings{
		IssuerNumber:   DefaultIssuerNumber,
		ReceiptDay:     25,
		PeriodStartDay: 21,
	}
}

type InvoiceSettingsHolder struct {
	current atomic.Value // holds InvoiceSettings
}

// NewStaticInvoiceSettings returns a holder that never reloads.
func NewStaticInvoiceSettings(settings InvoiceSettings) *InvoiceSettingsHolder {
	holder := &InvoiceSettingsHolder{}
	holder.current.Store(settings)
	return holder
}

func NewInvoiceSettingsHolder(cfg Config, log *zap.Logger) (*InvoiceSettingsHolder, error) {
	log = log.Named("config.invoice")
	v := viper.New()

	v.SetConfigName("invoice")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/salesinvoice")
	v.AddConfigPath(".")

	v.SetEnvPrefix("SALESINVOICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultInvoiceSettings()
	v.SetDefault("invoice.issuerNumber", defaults.IssuerNumber)
	v.SetDefault("invoice.receiptDay", defaults.ReceiptDay)
	v.SetDefault("invoice.periodStartDay", defaults.PeriodStartDay)

	fileFound := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		fileFound = false
	}

	var settings InvoiceSettings
	if err := v.UnmarshalKey("invoice", &settings); err != nil {
		return nil, err
	}
	if err := ValidateInvoiceSettings(settings); err != nil {
		return nil, err
	}

	holder := NewStaticInvoiceSettings(settings)

	if fileFound && cfg.SettingsWatch {
		v.OnConfigChange(func(e fsnotify.Event) {
			var updated InvoiceSettings
			if err := v.UnmarshalKey("invoice", &updated); err != nil {
				log.Warn("reload failed", zap.Error(err))
				return
			}
			if err := ValidateInvoiceSettings(updated); err != nil {
				log.Warn("invalid settings ignored", zap.Error(err))
				return
			}
			holder.current.Store(updated)
			log.Info("settings reloaded", zap.String("file", e.Name))
		})
		v.WatchConfig()
	}

	return holder, nil
}

func (h *InvoiceSettingsHolder) Get() InvoiceSettings {
	if h == nil {
		return DefaultInvoiceSettings()
	}
	return h.current.Load().(InvoiceSettings)
}

func ValidateInvoiceSettings(s InvoiceSettings) error {
	if strings.TrimSpace(s.IssuerNumber) == "" {
		return errors.New("invoice.issuerNumber cannot be empty")
	}
	// Days past 28 would not exist in February.
	if s.ReceiptDay < 1 || s.ReceiptDay > 28 {
		return errors.New("invoice.receiptDay must be between 1 and 28")
	}
	if s.PeriodStartDay < 1 || s.PeriodStartDay > 28 {
		return errors.New("invoice.periodStartDay must be between 1 and 28")
	}
	return nil
}
