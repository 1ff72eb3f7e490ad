package probe

import "github.com/hamed0406/timetablesvc/internal/transport"

// CheckPolicy decides whether a response that made it through the transport
// is also correct at the domain level. It is either NoCheck or CustomCheck.
type CheckPolicy interface {
	evaluate(res *transport.Response) (string, error)
}

// NoCheck accepts any successful response and reports "OK".
type NoCheck struct{}

func (NoCheck) evaluate(*transport.Response) (string, error) {
	return "OK", nil
}

// CustomCheck inspects the response and returns a short status summary, or an
// error when the payload shows the dependency is not serving real data.
type CustomCheck func(res *transport.Response) (string, error)

func (c CustomCheck) evaluate(res *transport.Response) (string, error) {
	return c(res)
}
