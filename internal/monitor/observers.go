package monitor

import "github.com/rs/zerolog"

// AlertLogger logs every transition; exits are raised as warnings so they
// stand out the way the dashboard's violation toast does.
func AlertLogger(log zerolog.Logger) Observer {
	return ObserverFunc(func(ev Event) error {
		switch ev.Kind {
		case ZoneExited:
			log.Warn().
				Str("entity", ev.EntityID).
				Str("zone", ev.ZoneID).
				Stringer("position", ev.Position).
				Time("at", ev.At).
				Msgf("Zone Violation Alert: %s is outside their assigned zone", ev.EntityName)
		default:
			log.Info().
				Str("entity", ev.EntityID).
				Str("zone", ev.ZoneID).
				Stringer("position", ev.Position).
				Time("at", ev.At).
				Msgf("%s entered zone %s", ev.EntityName, ev.ZoneName)
		}
		return nil
	})
}
