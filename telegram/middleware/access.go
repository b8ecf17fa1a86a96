package middleware

import tele "gopkg.in/telebot.v4"

// AdminOptions configures the admin gate. A zero AdminID disables the
// check entirely, which keeps admin commands usable in dev setups.
type AdminOptions struct {
	AdminID  int64
	OnReject tele.HandlerFunc
}

// AdminOnlyMiddleware drops updates from anyone but the configured admin.
// Rejected senders get OnReject when set and silence otherwise.
func AdminOnlyMiddleware(opts AdminOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if opts.AdminID == 0 || (c.Sender() != nil && c.Sender().ID == opts.AdminID) {
				return next(c)
			}
			if opts.OnReject != nil {
				return opts.OnReject(c)
			}
			return nil
		}
	}
}
