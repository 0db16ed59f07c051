package pubchem

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"
)

// firstElements streams an XML document and returns the character data of
// the first element in namespace space for each requested local name,
// wherever it appears in the tree. Names that never occur are omitted.
func firstElements(doc []byte, space string, locals ...string) (map[string]string, error) {
	wanted := make(map[string]bool, len(locals))
	for _, l := range locals {
		wanted[l] = true
	}
	found := make(map[string]string, len(locals))

	dec := xml.NewDecoder(bytes.NewReader(doc))
	dec.Strict = false
	for len(found) < len(wanted) {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Space != space || !wanted[start.Name.Local] {
			continue
		}
		if _, seen := found[start.Name.Local]; seen {
			continue
		}
		var text string
		if err := dec.DecodeElement(&text, &start); err != nil {
			return nil, err
		}
		found[start.Name.Local] = strings.TrimSpace(text)
	}
	return found, nil
}

//Personal.AI order the ending
