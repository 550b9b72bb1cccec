package fpl

import (
	"fplassist-backend/lib/restyutil"
	"fplassist-backend/lib/telemetry"

	"github.com/go-resty/resty/v2"
)

var restyInstrumentOutput restyutil.InstrumentOutput

// SetRestyInstrumentOutput enables full request/response dumps for
// every client constructed afterwards. Used by the CLI's verbose mode.
func SetRestyInstrumentOutput(output restyutil.InstrumentOutput) {
	restyInstrumentOutput = output
}

func instrumentHttp(client *resty.Client) {
	if restyInstrumentOutput != nil {
		restyutil.InstrumentClient(client, tracer, restyInstrumentOutput)
		return
	}
	telemetry.InstrumentResty(client, "scrapers/fpl/http")
}
