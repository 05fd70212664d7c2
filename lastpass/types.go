// Copyright 2019 the Drone Authors. All rights reserved.
// Use of this source code is governed by the Blue Oak Model License
// that can be found in the LICENSE file.

package lastpass

// EntrySummary is a search hit. Name is escaped for markup when it came
// from a JSON response.
type EntrySummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Folder string `json:"folder"`
}

// EntryDetail is a fully loaded vault entry.
type EntryDetail struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	Username string `json:"username"`
	Password string `json:"password"`
	Note     string `json:"note"`
	IsNote   bool   `json:"is_note"`
}

// Result is the captured outcome of one lpass invocation.
type Result struct {
	ExitCode int
	Output   string
}

type jsonEntry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Group    string `json:"group"`
	URL      string `json:"url"`
	Username string `json:"username"`
	Password string `json:"password"`
	Note     string `json:"note"`
}

func (e *jsonEntry) detail() *EntryDetail {
	return &EntryDetail{
		ID:       e.ID,
		Name:     e.Name,
		URL:      e.URL,
		Username: e.Username,
		Password: e.Password,
		Note:     e.Note,
		IsNote:   e.Note != "" && e.Password == "",
	}
}
