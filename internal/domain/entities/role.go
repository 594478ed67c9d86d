package entities

import (
	"strings"
	"unicode"
)

// Role categories.
const (
	RoleCategoryCore       = "core"
	RoleCategoryAdditional = "additional"
)

// Role is an item of the roles collection.
type Role struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
	Order       int    `json:"order"`
}

// RolesFromRecords converts a collection listing into roles, skipping records
// without a name.
func RolesFromRecords(recs []Record) []Role {
	roles := make([]Role, 0, len(recs))
	for _, rec := range recs {
		var r Role
		if err := rec.Decode(&r); err != nil {
			r = Role{Name: rec.String("name")}
		}
		r.ID = rec.ID()
		if strings.TrimSpace(r.Name) == "" {
			continue
		}
		roles = append(roles, r)
	}
	return roles
}

// RoleID derives a role id from its display name: lower case, with every run
// of non-alphanumeric characters replaced by a single underscore.
func RoleID(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}

// RoleTable maps credit role names onto canonical credit fields.
type RoleTable struct {
	// Fields maps a canonical display name to its credit field, e.g.
	// "Sound Designer" -> "soundDesign".
	Fields map[string]string `yaml:"fields"`
	// Variants maps a lower-case phrasing to a display name, e.g.
	// "sound design" -> "Sound Designer".
	Variants map[string]string `yaml:"variants"`
}

var defaultRoleFields = map[string]string{
	"Sound Designer":             "soundDesign",
	"Re-recording Mixer":         "reRecordingMix",
	"Sound Editor":               "soundEditor",
	"Dialogue Editor":            "dialogueEditor",
	"ADR Supervisor":             "adr",
	"Foley Artist":               "foley",
	"Audio Post Producer":        "audioPostProducer",
	"Production Sound Mixer":     "productionSoundMixer",
	"Sound Recordist":            "soundRecordist",
	"Music Supervisor":           "musicSupervisor",
	"Audio Engineer":             "audioEngineer",
	"Location Sound Recordist":   "locationSoundRecordist",
	"Post Production Supervisor": "postProductionSupervisor",
	"Sound Effects Designer":     "soundEffectsDesigner",
	"Voice Over Director":        "voiceOverDirector",
	"Dubbing Director":           "dubbingDirector",
}

var defaultRolePhrasings = map[string]string{
	"sound design":          "Sound Designer",
	"re-recording mix":      "Re-recording Mixer",
	"rerecording mixer":     "Re-recording Mixer",
	"mix":                   "Re-recording Mixer",
	"sound editing":         "Sound Editor",
	"dialogue editing":      "Dialogue Editor",
	"dialogue edit":         "Dialogue Editor",
	"adr":                   "ADR Supervisor",
	"foley":                 "Foley Artist",
	"foley artists":         "Foley Artist",
	"audio post production": "Audio Post Producer",
	"music supervision":     "Music Supervisor",
	"sound effects":         "Sound Effects Designer",
	"voice over direction":  "Voice Over Director",
	"dubbing":               "Dubbing Director",
}

// DefaultRoleTable returns the built-in table. The result is a fresh copy.
func DefaultRoleTable() RoleTable {
	t := RoleTable{
		Fields:   make(map[string]string, len(defaultRoleFields)),
		Variants: make(map[string]string, len(defaultRoleFields)+len(defaultRolePhrasings)),
	}
	for display, field := range defaultRoleFields {
		t.Fields[display] = field
		t.Variants[strings.ToLower(display)] = display
	}
	for variant, display := range defaultRolePhrasings {
		t.Variants[variant] = display
	}
	return t
}

// Clone returns a deep copy of the table.
func (t RoleTable) Clone() RoleTable {
	out := RoleTable{
		Fields:   make(map[string]string, len(t.Fields)),
		Variants: make(map[string]string, len(t.Variants)),
	}
	for k, v := range t.Fields {
		out.Fields[k] = v
	}
	for k, v := range t.Variants {
		out.Variants[strings.ToLower(k)] = v
	}
	return out
}

// IsField reports whether key is one of the canonical credit fields.
func (t RoleTable) IsField(key string) bool {
	for _, field := range t.Fields {
		if field == key {
			return true
		}
	}
	return false
}
