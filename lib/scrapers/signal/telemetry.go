package signal

import (
	"investor-parser/lib/restyutil"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("scrapers/signal")

var restyInstrumentOutput restyutil.InstrumentOutput

// SetRestyInstrumentOutput sets the output that http requests/responses
// created by this package will be written to. Takes effect for clients
// created after the call.
func SetRestyInstrumentOutput(out restyutil.InstrumentOutput) {
	restyInstrumentOutput = out
}
