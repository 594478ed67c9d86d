package entities

// Person role labels assigned by the reconciler.
const (
	PersonRoleCollaborator = "Collaborator"
	PersonRoleFreelancer   = "Freelancer"
)

// Person is a record in the people or freelancers collection. Both collections
// share this shape.
type Person struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	Roles       []string `json:"roles,omitempty"`
	Bio         string   `json:"bio"`
	Image       string   `json:"image"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	LinkedIn    string   `json:"linkedin"`
	Specialties []string `json:"specialties"`
	Experience  string   `json:"experience"`
	Education   string   `json:"education"`
	Awards      []string `json:"awards"`
	Featured    bool     `json:"featured"`
	Order       int      `json:"order"`
}

// PersonFromRecord reads the fields the reconciler needs. Records with other
// malformed fields still yield their id and name.
func PersonFromRecord(rec Record) Person {
	var p Person
	if err := rec.Decode(&p); err != nil {
		return Person{ID: rec.ID(), Name: rec.String("name")}
	}
	p.ID = rec.ID()
	return p
}

// PeopleFromRecords converts a collection listing into people.
func PeopleFromRecords(recs []Record) []Person {
	people := make([]Person, 0, len(recs))
	for _, rec := range recs {
		people = append(people, PersonFromRecord(rec))
	}
	return people
}
