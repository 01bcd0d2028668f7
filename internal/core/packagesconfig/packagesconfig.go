// Package packagesconfig reads the legacy packages.config format.
package packagesconfig

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// Entry is one <package id=".." version=".."/> element.
type Entry struct {
	ID      string
	Version string
	// TargetFramework is the optional targetFramework attribute.
	TargetFramework string
}

// Dir returns the folder NuGet restores the package into, "<id>.<version>".
func (e Entry) Dir() string {
	return e.ID + "." + e.Version
}

// Config is a parsed packages.config.
type Config struct {
	Entries []Entry
}

// Load reads the packages.config at path.
func Load(path string) (*Config, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, fmt.Errorf("failed to read packages config %s: %w", path, err)
	}
	c, err := parse(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to decode packages config %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes packages.config content.
func Parse(data []byte) (*Config, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, err
	}
	return parse(doc)
}

func parse(doc *etree.Document) (*Config, error) {
	if doc.Root() == nil {
		return nil, fmt.Errorf("document has no root element")
	}
	c := &Config{}
	for _, el := range doc.FindElements("//package") {
		e := Entry{
			ID:              el.SelectAttrValue("id", ""),
			Version:         el.SelectAttrValue("version", ""),
			TargetFramework: el.SelectAttrValue("targetFramework", ""),
		}
		if e.ID == "" || e.Version == "" {
			return nil, fmt.Errorf("package element %d needs both id and version", el.Index())
		}
		c.Entries = append(c.Entries, e)
	}
	return c, nil
}

// ByDir indexes the entries by their restore folder name, ignoring case.
func (c *Config) ByDir() map[string]Entry {
	m := make(map[string]Entry, len(c.Entries))
	for _, e := range c.Entries {
		m[strings.ToLower(e.Dir())] = e
	}
	return m
}
