package cli

import (
	"fmt"
	"io"
	"iter"

	json "github.com/goccy/go-json"
	"github.com/tailscale/hujson"

	"github.com/ruslan-rv-ua/sagittadb"
	"github.com/ruslan-rv-ua/sagittadb/internal/document"
)

// parseDocument parses one document from HuJSON text (JSON with
// comments and trailing commas allowed), standardized before decoding.
func parseDocument(data []byte) (sagittadb.Object, error) {
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return document.DecodeObject(std)
}

// parseDocuments parses a HuJSON file holding either a single object
// or an array of objects.
func parseDocuments(data []byte) ([]sagittadb.Object, error) {
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("parse documents: %w", err)
	}
	v, err := document.Decode(std)
	if err != nil {
		return nil, err
	}
	switch val := v.(type) {
	case document.Object:
		return []sagittadb.Object{val}, nil
	case document.Array:
		docs := make([]sagittadb.Object, 0, len(val))
		for i, elem := range val {
			obj, ok := elem.(document.Object)
			if !ok {
				return nil, fmt.Errorf("parse documents: element %d is not an object", i)
			}
			docs = append(docs, obj)
		}
		return docs, nil
	default:
		return nil, fmt.Errorf("parse documents: root must be an object or array of objects")
	}
}

// parseFilter parses a filter from HuJSON text.
func parseFilter(data []byte) (sagittadb.Filter, error) {
	obj, err := parseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("parse filter: %w", err)
	}
	return sagittadb.Filter(obj), nil
}

// printDocs drains a document sequence to w in the selected format:
// compact JSON lines, or indented JSON for "text".
func printDocs(w io.Writer, format string, docs iter.Seq2[sagittadb.Object, error]) (int64, error) {
	var n int64
	for doc, err := range docs {
		if err != nil {
			return n, err
		}
		if err := printDoc(w, format, doc); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func printDoc(w io.Writer, format string, doc sagittadb.Object) error {
	data, err := document.Encode(doc)
	if err != nil {
		return err
	}
	if format == "text" {
		var buf []byte
		if buf, err = indentJSON(data); err == nil {
			data = buf
		}
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

func indentJSON(data []byte) ([]byte, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return json.MarshalIndent(v, "", "  ")
}
