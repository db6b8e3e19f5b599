package surpac

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// DriverName is written in the header after the export date.
const DriverName = "Earthworks Surpac Driver"

// DateLayout formats the header date as dd-Mon-yy.
const DateLayout = "02-Jan-06"

// Fixed records.
const (
	// TerminatorLine closes a polyline part or a point.
	TerminatorLine = "0,    0,    0,    0, 0\n"

	headerAxisLine  = "0,    0.000000,    0.000000,    0.000000,    0.000000,    0.000000,    0.000000\n"
	footerLine      = "0,    0.000000,    0.000000,    0.000000,\n"
	footerEndLine   = "0,    0.000000,    0.000000,    0.000000, END\n"
	noneAttribute   = "None"
	dataLineFormat  = "1, %12.6f, %12.6f, %12.6f, %s\n"
	headerTitleForm = "%s, %s, %s,\n"
)

// HeaderLines returns the two header lines for a layer exported at date.
func HeaderLines(layerName string, date time.Time) []string {
	return []string{
		fmt.Sprintf(headerTitleForm, layerName, date.Format(DateLayout), DriverName),
		headerAxisLine,
	}
}

// FooterLines returns the two footer lines.
func FooterLines() []string {
	return []string{footerLine, footerEndLine}
}

// DataLine formats one data record. Coordinates are written northing first.
func DataLine(x, y, z float64, attribute string) string {
	return fmt.Sprintf(dataLineFormat, y, x, z, attribute)
}

// FormatAttribute renders an attribute value for the last record column.
// nil renders as "None", booleans as "True"/"False", floats in their
// shortest decimal form and composite values as JSON.
func FormatAttribute(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return noneAttribute
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case json.Number:
		return val.String()
	case bool:
		if val {
			return "True"
		}
		return "False"
	case fmt.Stringer:
		return val.String()
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(data)
	}
}
