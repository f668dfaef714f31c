package espn

import (
	"strconv"
	"strings"

	"live-scores-service/internal/domain"
)

func mapEvent(sportID string, e eventResponse) domain.Event {
	event := domain.Event{
		SportID: sportID,
		EventID: e.ID,
		Status:  mapState(e.Status.Type.State),
		Clock:   strings.TrimSpace(e.Status.DisplayClock),
	}
	if e.Status.Period > 0 {
		event.Period = strconv.Itoa(e.Status.Period)
	}

	if len(e.Competitions) == 0 {
		return event
	}
	for _, competitor := range e.Competitions[0].Competitors {
		switch competitor.HomeAway {
		case "home":
			event.HomeTeam = competitor.Team.DisplayName
			event.HomeScore = parseScore(competitor.Score)
		case "away":
			event.AwayTeam = competitor.Team.DisplayName
			event.AwayScore = parseScore(competitor.Score)
		}
	}
	return event
}

func mapState(state string) domain.GameStatus {
	switch strings.ToLower(state) {
	case "in":
		return domain.StatusLive
	case "post":
		return domain.StatusFinal
	default:
		return domain.StatusScheduled
	}
}

// parseScore treats a missing or unparseable score as zero, the upstream
// convention for "no score posted yet".
func parseScore(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
