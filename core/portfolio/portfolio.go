// Package portfolio assembles the verified facts the assistant is allowed to
// talk about and turns them into the realtime system prompt.
package portfolio

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Empty is the snapshot used when no facts could be loaded.
const Empty = "{}"

type Personal struct {
	Name     string  `json:"name" yaml:"name"`
	Title    string  `json:"title" yaml:"title"`
	Location string  `json:"location" yaml:"location"`
	Summary  string  `json:"summary" yaml:"summary"`
	Email    string  `json:"email" yaml:"email"`
	LinkedIn *string `json:"linkedin" yaml:"linkedin"`
	GitHub   *string `json:"github" yaml:"github"`
}

type Project struct {
	Title          string   `json:"title" yaml:"title"`
	Description    string   `json:"description" yaml:"description"`
	TechStack      []string `json:"tech_stack" yaml:"tech_stack"`
	StoryProblem   string   `json:"story_problem" yaml:"story_problem"`
	StoryDecisions string   `json:"story_decisions" yaml:"story_decisions"`
	StoryResult    string   `json:"story_result" yaml:"story_result"`
	LiveURL        *string  `json:"live_url" yaml:"live_url"`
}

type Experience struct {
	Company      string   `json:"company" yaml:"company"`
	Title        string   `json:"title" yaml:"title"`
	Location     string   `json:"location" yaml:"location"`
	StartDate    string   `json:"start_date" yaml:"start_date"`
	EndDate      *string  `json:"end_date" yaml:"end_date"`
	Description  []string `json:"description" yaml:"description"`
	Achievements []string `json:"achievements" yaml:"achievements"`
}

type Education struct {
	Institution string  `json:"institution" yaml:"institution"`
	Degree      string  `json:"degree" yaml:"degree"`
	Location    string  `json:"location" yaml:"location"`
	Date        *string `json:"date" yaml:"date"`
}

type Skill struct {
	Name     string `json:"name" yaml:"name"`
	Category string `json:"category" yaml:"category"`
}

// Facts is everything the assistant may state about the site owner.
type Facts struct {
	Personal   *Personal    `json:"personal" yaml:"personal"`
	Projects   []Project    `json:"projects" yaml:"projects"`
	Experience []Experience `json:"experience" yaml:"experience"`
	Education  []Education  `json:"education" yaml:"education"`
	Skills     []Skill      `json:"skills" yaml:"skills"`
}

// OwnerName returns the owner's name from the facts, or fallback when the
// personal section is missing.
func (f Facts) OwnerName(fallback string) string {
	if f.Personal != nil && strings.TrimSpace(f.Personal.Name) != "" {
		return strings.TrimSpace(f.Personal.Name)
	}
	return fallback
}

// Snapshot serializes the facts as indented JSON. Missing sections are
// emitted as empty lists so the prompt shape stays stable.
func Snapshot(facts Facts) (string, error) {
	if facts.Projects == nil {
		facts.Projects = []Project{}
	}
	if facts.Experience == nil {
		facts.Experience = []Experience{}
	}
	if facts.Education == nil {
		facts.Education = []Education{}
	}
	if facts.Skills == nil {
		facts.Skills = []Skill{}
	}

	data, err := json.MarshalIndent(facts, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal portfolio facts: %w", err)
	}
	return string(data), nil
}

// Instructions builds the system prompt. The snapshot is the only source of
// truth the assistant is given.
func Instructions(owner, snapshot string) string {
	if strings.TrimSpace(snapshot) == "" {
		snapshot = Empty
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "You are %s's portfolio assistant. Your only job is to tell visitors about %s and their work.\n\n", owner, owner)
	sb.WriteString("Rules:\n")
	fmt.Fprintf(&sb, "- Only discuss %s: their work, projects, experience, skills and education.\n", owner)
	sb.WriteString("- Use only the facts in the Portfolio Data below. Never invent, infer or assume anything that is not there.\n")
	fmt.Fprintf(&sb, "- If something is not in the Portfolio Data, say \"I don't have that information about %s.\"\n", owner)
	sb.WriteString("- Share information proactively instead of asking questions back, and offer to tell more.\n")
	fmt.Fprintf(&sb, "- Politely steer off-topic questions back to %s's portfolio.\n\n", owner)
	sb.WriteString("Style: speak casually and naturally, use contractions, vary sentence length, avoid formal phrasing and lists unless asked. Sound like a human guide, not a narrator.\n\n")
	sb.WriteString("Portfolio Data (use only this information):\n")
	sb.WriteString(snapshot)
	sb.WriteString("\n")

	return sb.String()
}
