package cmd

import (
	"fmt"
	"strings"

	"github.com/corey/jstree/internal/adapters/web"
	"github.com/corey/jstree/internal/ports"
)

// ANSI color codes for terminal output.
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorCyan   = "\033[36m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorGray   = "\033[90m"
)

// palette returns c when color is on, otherwise "".
func palette(color bool) func(c string) string {
	return func(c string) string {
		if color {
			return c
		}
		return ""
	}
}

// formatAnalysis formats a project analysis for terminal display.
//
//	⚡ demo │ 3 files
//	  lib/api.js  ⚠ syntax errors
//	    imports    axios
//	    classes    Api
//	    functions  Api.run
func formatAnalysis(a *ports.ProjectAnalysis, color bool) string {
	c := palette(color)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s⚡ %s%s │ %d files\n", c(colorBold), a.Project, c(colorReset), len(a.Boxes)))

	for _, box := range a.Boxes {
		sb.WriteString(fmt.Sprintf("  %s%s%s", c(colorCyan), box.Path, c(colorReset)))
		if box.HasError {
			sb.WriteString(fmt.Sprintf("  %s⚠ syntax errors%s", c(colorYellow), c(colorReset)))
		}
		sb.WriteString("\n")

		writeList(&sb, c, "imports", box.Imports)
		writeList(&sb, c, "classes", box.Classes)
		writeList(&sb, c, "functions", box.Functions)
	}
	return sb.String()
}

func writeList(sb *strings.Builder, c func(string) string, label string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(fmt.Sprintf("    %s%-10s%s %s%s%s\n",
		c(colorGray), label, c(colorReset), c(colorGreen), strings.Join(items, ", "), c(colorReset)))
}

// formatPaths formats the result of a graph query, one path per line.
func formatPaths(paths []string, verb, name string, color bool) string {
	c := palette(color)
	if len(paths) == 0 {
		return fmt.Sprintf("%sno file %s %s%s\n", c(colorGray), verb, name, c(colorReset))
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s⚡ %d files %s %s%s\n", c(colorBold), len(paths), verb, name, c(colorReset)))
	for _, p := range paths {
		sb.WriteString(fmt.Sprintf("  %s%s%s\n", c(colorCyan), p, c(colorReset)))
	}
	return sb.String()
}

// formatHealth formats a server health response for terminal display.
func formatHealth(url string, h *web.HealthResult, color bool) string {
	c := palette(color)
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s⚡ jstree server%s\n", c(colorBold), c(colorReset)))
	sb.WriteString(fmt.Sprintf("  Status:    %s%s%s\n", c(colorGreen), h.Status, c(colorReset)))
	sb.WriteString(fmt.Sprintf("  URL:       %s\n", url))
	sb.WriteString(fmt.Sprintf("  Language:  %s\n", h.Language))
	sb.WriteString(fmt.Sprintf("  Uptime:    %s\n", h.Uptime))
	return sb.String()
}

// formatProjects lists stored project names.
func formatProjects(names []string, color bool) string {
	c := palette(color)
	if len(names) == 0 {
		return fmt.Sprintf("%sno saved projects%s\n", c(colorGray), c(colorReset))
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s⚡ %d projects%s\n", c(colorBold), len(names), c(colorReset)))
	for _, n := range names {
		sb.WriteString(fmt.Sprintf("  %s%s%s\n", c(colorCyan), n, c(colorReset)))
	}
	return sb.String()
}
