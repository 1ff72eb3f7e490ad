package enquiry

// DeliveryMode decides who receives an enquiry.
type DeliveryMode int

const (
	// ModeNormal mails the faculty and copies the team and the student.
	ModeNormal DeliveryMode = iota
	// ModeDebug was requested by the caller; only the team receives it.
	ModeDebug
	// ModeSuppressed is set by the kill switch; only the team receives it.
	ModeSuppressed
)

func (m DeliveryMode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeDebug:
		return "debug"
	case ModeSuppressed:
		return "suppressed"
	default:
		return "unknown"
	}
}

const rule = "========================"

func (m DeliveryMode) banner(facultyEmail string) string {
	switch m {
	case ModeDebug:
		return "This is a debug email. If this was in production this would have been sent to <" +
			facultyEmail + ">.\n" + rule + "\n"
	case ModeSuppressed:
		return "The killswitch has been activated. This email would originally have been sent to <" +
			facultyEmail + ">.\n" + rule + "\n"
	default:
		return ""
	}
}
