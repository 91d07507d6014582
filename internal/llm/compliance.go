package llm

import (
    _ "embed"
    "fmt"
    "strings"
    "sync"

    "gopkg.in/yaml.v3"
)

//go:embed compliance.yaml
var complianceYAML []byte

// FallbackISO marks the rows used for countries missing from the table.
const FallbackISO = "XX"

// Requirement is one recurring filing obligation.
type Requirement struct {
    ISOCode     string `yaml:"iso_code"`
    Country     string `yaml:"country"`
    Requirement string `yaml:"requirement"`
    Frequency   string `yaml:"frequency"`
    Authority   string `yaml:"authority"`
    Risk        string `yaml:"risk"`
}

type complianceFile struct {
    Requirements []Requirement `yaml:"requirements"`
}

var loadCompliance = sync.OnceValues(func() ([]Requirement, error) {
    var f complianceFile
    if err := yaml.Unmarshal(complianceYAML, &f); err != nil {
        return nil, fmt.Errorf("parse compliance table: %w", err)
    }
    return f.Requirements, nil
})

// Requirements returns the embedded table.  The file ships with the binary,
// so a parse error is a build defect and panics.
func Requirements() []Requirement {
    rows, err := loadCompliance()
    if err != nil {
        panic(err)
    }
    return rows
}

// RequirementsFor returns the rows matching country by name or ISO code, or
// the fallback rows when nothing matches.
func RequirementsFor(country string) []Requirement {
    c := strings.TrimSpace(country)
    var out, fallback []Requirement
    for _, r := range Requirements() {
        if r.ISOCode == FallbackISO {
            fallback = append(fallback, r)
            continue
        }
        if c != "" && (strings.EqualFold(r.Country, c) || strings.EqualFold(r.ISOCode, c)) {
            out = append(out, r)
        }
    }
    if len(out) == 0 {
        return fallback
    }
    return out
}

// ComplianceTable renders rows as the markdown table embedded in prompts.
func ComplianceTable(rows []Requirement) string {
    var b strings.Builder
    b.WriteString("| ISO_Code | Country | Requirement_Name | Typical_Frequency | Key_Authority | Risk_Level |\n")
    b.WriteString("|----------|---------|------------------|-------------------|---------------|------------|\n")
    for _, r := range rows {
        fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n", r.ISOCode, r.Country, r.Requirement, r.Frequency, r.Authority, r.Risk)
    }
    return b.String()
}
