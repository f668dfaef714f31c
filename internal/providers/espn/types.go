package espn

type scoreboardResponse struct {
	Events []eventResponse `json:"events"`
}

type eventResponse struct {
	ID           string                `json:"id"`
	Name         string                `json:"name"`
	Status       statusResponse        `json:"status"`
	Competitions []competitionResponse `json:"competitions"`
}

type statusResponse struct {
	Period       int          `json:"period"`
	DisplayClock string       `json:"displayClock"`
	Type         statusDetail `json:"type"`
}

type statusDetail struct {
	State     string `json:"state"`
	Completed bool   `json:"completed"`
}

type competitionResponse struct {
	ID          string               `json:"id"`
	Competitors []competitorResponse `json:"competitors"`
}

type competitorResponse struct {
	HomeAway string       `json:"homeAway"`
	Score    string       `json:"score"`
	Team     teamResponse `json:"team"`
}

type teamResponse struct {
	ID           string `json:"id"`
	DisplayName  string `json:"displayName"`
	Abbreviation string `json:"abbreviation"`
}
