package diagnostic

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// cppcheckError mirrors one <error> element of a cppcheck --xml report.
//
// Version 2 reports carry the position in a <location> child:
//
//	<results version="2">
//	  <errors>
//	    <error id="nullPointer" severity="error" msg="Null pointer dereference">
//	      <location file="test.cpp" line="10" column="5"/>
//	    </error>
//	  </errors>
//	</results>
//
// Version 1 reports put file/line directly on <error>.
type cppcheckError struct {
	ID        string             `xml:"id,attr"`
	Severity  string             `xml:"severity,attr"`
	Msg       string             `xml:"msg,attr"`
	Verbose   string             `xml:"verbose,attr"`
	Line      string             `xml:"line,attr"`
	Locations []cppcheckLocation `xml:"location"`
}

type cppcheckLocation struct {
	File   string `xml:"file,attr"`
	Line   string `xml:"line,attr"`
	Column string `xml:"column,attr"`
}

// ParseCppcheckXML decodes a cppcheck XML report into diagnostics in report
// order. Elements without a resolvable line are dropped. An empty report
// yields no diagnostics; unparsable input yields ErrMalformedOutput.
func ParseCppcheckXML(data []byte) ([]Diagnostic, error) {
	diags := []Diagnostic{}
	if len(bytes.TrimSpace(data)) == 0 {
		return diags, nil
	}

	dec := xml.NewDecoder(bytes.NewReader(data))
	sawRoot := false

	for {
		offset := dec.InputOffset()
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		sawRoot = true
		if start.Name.Local != "error" {
			continue
		}

		var el cppcheckError
		if err := dec.DecodeElement(&el, &start); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
		}
		raw := strings.TrimSpace(string(data[offset:dec.InputOffset()]))

		line, column, ok := el.position()
		if !ok {
			continue
		}

		diags = append(diags, Diagnostic{
			Line:          line,
			Column:        column,
			Message:       el.Msg,
			Severity:      ParseSeverity(el.Severity),
			ID:            el.ID,
			RawToolOutput: raw,
		})
	}

	if !sawRoot {
		return nil, fmt.Errorf("%w: no XML elements found", ErrMalformedOutput)
	}

	return diags, nil
}

// position resolves the first location's line, falling back to the
// version 1 line attribute.
func (e *cppcheckError) position() (line, column int, ok bool) {
	if len(e.Locations) > 0 {
		loc := e.Locations[0]
		line, ok = parsePositive(loc.Line)
		if !ok {
			return 0, 0, false
		}
		column, _ = parsePositive(loc.Column)
		return line, column, true
	}

	line, ok = parsePositive(e.Line)
	return line, 0, ok
}

func parsePositive(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
