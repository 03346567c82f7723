package integration

import (
	"fmt"
	"strings"

	"github.com/abelzeko/angler-bot/internal/entities"
	"github.com/adrianmo/go-nmea"
)

// ParseNMEAFix reads a GGA or RMC sentence from a GPS device and returns its position
func ParseNMEAFix(line string) (lat, lon float64, err error) {
	sentence, err := nmea.Parse(strings.TrimSpace(line))
	if err != nil {
		return 0, 0, entities.NewValidationError(fmt.Sprintf("invalid NMEA sentence: %v", err))
	}

	switch s := sentence.(type) {
	case nmea.GGA:
		if s.FixQuality == nmea.Invalid {
			return 0, 0, entities.NewValidationError("GPS has no fix")
		}
		return s.Latitude, s.Longitude, nil
	case nmea.RMC:
		if s.Validity != nmea.ValidRMC {
			return 0, 0, entities.NewValidationError("GPS has no fix")
		}
		return s.Latitude, s.Longitude, nil
	default:
		return 0, 0, entities.NewValidationError(fmt.Sprintf("unsupported NMEA sentence type %s", sentence.DataType()))
	}
}
