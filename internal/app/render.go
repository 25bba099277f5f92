package app

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/andriiyaremenko/tinyioc"
	"github.com/andriiyaremenko/tinyioc/internal/config"
)

func render(w io.Writer, format string, graph []tinyioc.BeanInfo) error {
	if format == config.FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(graph)
	}

	return renderText(w, graph)
}

// renderText prints one bean per line followed by its indented dependencies:
//
//	repository (Repository)
//	  primaryDB (Database) -> [primaryDB]
func renderText(w io.Writer, graph []tinyioc.BeanInfo) error {
	for _, bean := range graph {
		line := fmt.Sprintf("%s (%s)", bean.Name, bean.Type)
		if bean.Primary {
			line += " primary"
		}

		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}

		for _, dep := range bean.Dependencies {
			kind := dep.Type
			switch {
			case dep.Shape != "":
				kind = fmt.Sprintf("%s of %s", dep.Shape, dep.Element)
			case dep.Qualified:
				kind += ", qualified"
			}

			_, err := fmt.Fprintf(w, "  %s (%s) -> [%s]\n", dep.Name, kind, strings.Join(dep.Beans, ", "))
			if err != nil {
				return err
			}
		}
	}

	return nil
}
