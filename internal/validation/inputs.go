package validation

import "strconv"

// Input is a record one of the schemas can check. A nil entry in fields means
// the field was not supplied.
type Input interface {
	fields() map[string]*string
}

type Signup struct {
	Name     string
	Email    string
	Password string
}

func (s Signup) fields() map[string]*string {
	return map[string]*string{"name": &s.Name, "email": &s.Email, "password": &s.Password}
}

type Login struct {
	Email    string
	Password string
}

func (l Login) fields() map[string]*string {
	return map[string]*string{"email": &l.Email, "password": &l.Password}
}

type Task struct {
	Description string
}

func (t Task) fields() map[string]*string {
	return map[string]*string{"description": &t.Description}
}

type TaskUpdate struct {
	Description *string
	Completed   *bool
}

func (t TaskUpdate) fields() map[string]*string {
	var completed *string
	if t.Completed != nil {
		s := strconv.FormatBool(*t.Completed)
		completed = &s
	}
	return map[string]*string{"description": t.Description, "completed": completed}
}

type Profile struct {
	Name     *string
	Email    *string
	Password *string
}

func (p Profile) fields() map[string]*string {
	return map[string]*string{"name": p.Name, "email": p.Email, "password": p.Password}
}
