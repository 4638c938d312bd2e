package delivery

import (
	"fmt"
	"strings"

	"github.com/babar14jan/doctorpod/pkg/logging"
)

const (
	// WhatsAppProviderAuto prefers UltraMsg, then CallMeBot.
	WhatsAppProviderAuto = "auto"
	// WhatsAppProviderUltraMsg forces the UltraMsg sender when credentials exist.
	WhatsAppProviderUltraMsg = "ultramsg"
	// WhatsAppProviderCallMeBot forces the CallMeBot sender when credentials exist.
	WhatsAppProviderCallMeBot = "callmebot"
)

// WhatsAppSelectionConfig captures the credentials required to build a
// WhatsApp sender.
type WhatsAppSelectionConfig struct {
	Preference        string
	UltraMsgInstance  string
	UltraMsgToken     string
	CallMeBotAPIKey   string
}

// BuildWhatsAppSender instantiates a Sender based on the preferred
// provider. It returns the sender, the provider that was selected, and a
// reason when no provider could be initialized.
func BuildWhatsAppSender(cfg WhatsAppSelectionConfig, logger *logging.Logger) (Sender, string, string) {
	if logger == nil {
		logger = logging.Default()
	}
	preference := strings.ToLower(strings.TrimSpace(cfg.Preference))
	if preference == "" {
		preference = WhatsAppProviderAuto
	}

	missing := map[string]string{}
	var ultra Sender
	var callmebot Sender

	if cfg.UltraMsgInstance != "" && cfg.UltraMsgToken != "" {
		ultra = NewUltraMsgSender(cfg.UltraMsgInstance, cfg.UltraMsgToken, logger)
	} else {
		var reasons []string
		if cfg.UltraMsgInstance == "" {
			reasons = append(reasons, "ULTRAMSG_INSTANCE_ID missing")
		}
		if cfg.UltraMsgToken == "" {
			reasons = append(reasons, "ULTRAMSG_TOKEN missing")
		}
		missing[WhatsAppProviderUltraMsg] = strings.Join(reasons, ", ")
	}

	if cfg.CallMeBotAPIKey != "" {
		callmebot = NewCallMeBotSender(cfg.CallMeBotAPIKey, logger)
	} else {
		missing[WhatsAppProviderCallMeBot] = "CALLMEBOT_APIKEY missing"
	}

	if preference != WhatsAppProviderAuto {
		if preference == WhatsAppProviderUltraMsg && ultra != nil {
			return ultra, WhatsAppProviderUltraMsg, ""
		}
		if preference == WhatsAppProviderCallMeBot && callmebot != nil {
			return callmebot, WhatsAppProviderCallMeBot, ""
		}
		reason := missing[preference]
		if reason == "" {
			reason = fmt.Sprintf("%s sender not configured", preference)
		}
		return nil, "", reason
	}

	if ultra != nil {
		return ultra, WhatsAppProviderUltraMsg, ""
	}
	if callmebot != nil {
		return callmebot, WhatsAppProviderCallMeBot, ""
	}

	var reasons []string
	for _, provider := range []string{WhatsAppProviderUltraMsg, WhatsAppProviderCallMeBot} {
		if msg := missing[provider]; msg != "" {
			reasons = append(reasons, fmt.Sprintf("%s: %s", provider, msg))
		}
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "no WhatsApp providers configured")
	}
	return nil, "", strings.Join(reasons, "; ")
}
