package reminder

// Channel identifies the outbound medium for a reminder pass.
type Channel string

const (
	ChannelSMS      Channel = "sms"
	ChannelWhatsApp Channel = "whatsapp"
	ChannelVoice    Channel = "voice"
)

// Gated reports whether the channel only addresses bookings inside the
// due window. Voice call scripts go to every booking in the snapshot;
// SMS and WhatsApp reminders only fire close to the appointment.
func (c Channel) Gated() bool {
	return c != ChannelVoice
}

func (c Channel) String() string {
	return string(c)
}
