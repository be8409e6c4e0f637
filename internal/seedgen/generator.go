package seedgen

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/agonhq/agon/internal/domain/model"
)

// Synthetic population vocabulary.
var (
	programs = []model.Program{
		{ID: 1, Name: "Computer Science"},
		{ID: 2, Name: "Information Systems"},
		{ID: 3, Name: "Visual Design"},
		{ID: 4, Name: "Industrial Engineering"},
	}

	skills = []string{"AI", "Web Development", "Data Analysis", "UI/UX Design", "Public Speaking", "Robotics"}

	competitionTitles = []string{
		"Campus AI Hackathon",
		"National Data Challenge",
		"Startup Pitch Battle",
		"Robotics Cup",
		"Design Sprint Invitational",
		"Algorithmic Programming Contest",
	}

	firstNames = []string{"Alya", "Bima", "Citra", "Dimas", "Eka", "Farah", "Gilang", "Hana", "Indra", "Joko"}
	lastNames  = []string{"Pratama", "Wijaya", "Santoso", "Putri", "Hidayat", "Lestari", "Saputra", "Maulana"}
)

// Population is one generated cohort: the competitions, the students and
// the scored match events binding them.
type Population struct {
	Competitions []model.Competition
	Students     []model.Student
	Events       []model.MatchEvent
}

// Generate builds a deterministic synthetic population from the seed. Each
// student is matched to between one and three competitions with scores
// spread across all four quality bands.
func Generate(cfg *Config) Population {
	rng := rand.New(rand.NewSource(cfg.Seed))
	base := time.Now().UTC().Add(-24 * time.Hour)

	p := Population{
		Competitions: make([]model.Competition, 0, cfg.NumCompetitions),
		Students:     make([]model.Student, 0, cfg.NumStudents),
	}

	for i := 0; i < cfg.NumCompetitions; i++ {
		title := competitionTitles[i%len(competitionTitles)]
		if i >= len(competitionTitles) {
			title = fmt.Sprintf("%s %d", title, i/len(competitionTitles)+1)
		}
		declared := pickSkills(rng, 2+rng.Intn(2))
		p.Competitions = append(p.Competitions, model.Competition{
			ID:             int64(i + 1),
			Title:          title,
			Organizer:      "Student Affairs",
			Fields:         []string{"technology"},
			RelevantSkills: declared,
		})
	}

	seq := 0
	for i := 0; i < cfg.NumStudents; i++ {
		st := model.Student{
			ID:            int64(i + 1),
			Name:          firstNames[rng.Intn(len(firstNames))] + " " + lastNames[rng.Intn(len(lastNames))],
			Email:         fmt.Sprintf("student%04d@campus.test", i+1),
			StudentNumber: fmt.Sprintf("SN-%05d", i+1),
			GPA:           fmt.Sprintf("%.2f", 2.0+rng.Float64()*2.0),
			EntryYear:     2020 + rng.Intn(5),
			StudyProgram:  programs[rng.Intn(len(programs))],
			Interests:     pickSkills(rng, 1+rng.Intn(3)),
		}
		p.Students = append(p.Students, st)

		matched := 1 + rng.Intn(3)
		for _, comp := range pickCompetitions(rng, p.Competitions, matched) {
			score := matchScore(rng)
			seq++
			p.Events = append(p.Events, model.MatchEvent{
				EventID: fmt.Sprintf("seed-%d-%d-%d", cfg.Seed, st.ID, comp.ID),
				Student: st,
				Recommendation: model.Recommendation{
					ID:            uuid.New().String(),
					CompetitionID: comp.ID,
					StudentID:     st.ID,
					Rank:          1 + rng.Intn(cfg.NumStudents),
					MatchScore:    score,
					MatchReason:   fmt.Sprintf("profile overlap with %s", comp.Title),
					CreatedAt:     base.Add(time.Duration(seq) * time.Second),
				},
				SkillsProfile: skillProfile(rng, st.Interests, score),
			})
		}
	}

	return p
}

// matchScore draws a score that lands in all four bands: roughly 20%
// excellent, 30% good, 30% fair, 20% poor.
func matchScore(rng *rand.Rand) float64 {
	r := rng.Float64()
	switch {
	case r < 0.2:
		return round2(0.8 + rng.Float64()*0.2)
	case r < 0.5:
		return round2(0.6 + rng.Float64()*0.199)
	case r < 0.8:
		return round2(0.4 + rng.Float64()*0.199)
	default:
		return round2(rng.Float64() * 0.399)
	}
}

func round2(v float64) float64 {
	return float64(int(v*100)) / 100
}

func pickSkills(rng *rand.Rand, n int) []string {
	idx := rng.Perm(len(skills))
	if n > len(skills) {
		n = len(skills)
	}
	out := make([]string, 0, n)
	for _, i := range idx[:n] {
		out = append(out, skills[i])
	}
	return out
}

func pickCompetitions(rng *rand.Rand, comps []model.Competition, n int) []model.Competition {
	if n > len(comps) {
		n = len(comps)
	}
	idx := rng.Perm(len(comps))
	out := make([]model.Competition, 0, n)
	for _, i := range idx[:n] {
		out = append(out, comps[i])
	}
	return out
}

// skillProfile reports one score per interest, correlated with the match
// score so stronger matches look plausibly more skilled.
func skillProfile(rng *rand.Rand, interests []string, score float64) []model.SkillScore {
	out := make([]model.SkillScore, 0, len(interests))
	for _, name := range interests {
		v := score*0.7 + rng.Float64()*0.3
		if v > 1 {
			v = 1
		}
		out = append(out, model.SkillScore{Name: name, Score: round2(v)})
	}
	return out
}
