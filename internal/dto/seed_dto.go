package dto

// SeedDemoRequest sizes a demo data batch.
type SeedDemoRequest struct {
	Hikers int   `json:"hikers" validate:"omitempty,min=1,max=200"`
	Events int   `json:"events" validate:"omitempty,min=0,max=200"`
	Posts  int   `json:"posts" validate:"omitempty,min=0,max=500"`
	Seed   int64 `json:"seed"`
}

// SeedDemoResponse reports what a demo batch created.
type SeedDemoResponse struct {
	Hikers   []string `json:"hikers"`
	Events   int      `json:"events"`
	Posts    int      `json:"posts"`
	Password string   `json:"password"`
}
