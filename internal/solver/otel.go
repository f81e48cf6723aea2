package solver

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/jumprun/formationsim/internal/solver"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
