package generator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rcliao/learnpath/internal/model"
)

const planShape = `{
  "topic": "Topic Name",
  "days": [
    {
      "id": "day-1",
      "title": "Day 1: Focus Area",
      "steps": [
        {
          "id": "d1-s1",
          "title": "Step Title - make this descriptive for searching",
          "type": "video" | "article" | "quiz" | "exercise" | "project",
          "duration": "15m",
          "url": "%s",
          "completed": false
        }
      ]
    }
  ]
}`

func shapeFor(customSearch bool) string {
	if customSearch {
		return fmt.Sprintf(planShape, "")
	}
	return fmt.Sprintf(planShape, "https://actual-url-found-via-search.com")
}

func profileLines(p model.UserProfile) string {
	return fmt.Sprintf(`- Topic: %s
- Level: %s
- Time per day: %s
- Goal/Motivation: %s`, p.Topic, p.Level, p.TimeCommitment, p.Motivation)
}

func pathwaysPrompt(p model.UserProfile) string {
	return fmt.Sprintf(`You are an expert educational counselor. The user wants to learn about %q.
Identify 3-4 distinct, actionable learning pathways or specializations within this topic that they could focus on.

User Profile:
- Level: %s
- Motivation: %s

Return ONLY raw JSON (no markdown formatting) with this structure:
[
  {
    "id": "path-1",
    "title": "Short Headline (e.g. Data Scientist)",
    "learning_goal": "A concise sentence describing the primary outcome or goal of this path."
  }
]`, p.Topic, p.Level, p.Motivation)
}

func planPrompt(p model.UserProfile, pathways []string, customSearch bool) string {
	var b strings.Builder
	b.WriteString("You are an expert curriculum designer. Create a 7-day learning plan for:\n")
	b.WriteString(profileLines(p))
	b.WriteString("\n\n")
	if len(pathways) > 0 {
		fmt.Fprintf(&b, "The user has chosen to focus on these specific learning pathways/directions: %s. Ensure the curriculum heavily emphasizes these areas.\n\n",
			strings.Join(pathways, ", "))
	}
	if customSearch {
		b.WriteString(`Note: URLs will be populated automatically. Focus on creating descriptive step titles that will help find relevant resources.
For the "url" field, use an empty string "" - real URLs will be found via search.
`)
	} else {
		b.WriteString(`CRITICAL INSTRUCTION: FIND REAL RESOURCES
Use Google Search to find high-quality, free, and accessible learning resources for each step.
- For "video" steps, find actual YouTube videos or free course videos.
- For "article" steps, find reputable tutorials, documentation, or blog posts.
- For "project" steps, find specific project ideas or tutorials.
Double check that all URLs are real and relevant found from your search.
`)
	}
	b.WriteString("\nReturn ONLY raw JSON (no markdown formatting, no code blocks) with this exact structure:\n")
	b.WriteString(shapeFor(customSearch))
	fmt.Fprintf(&b, "\n\nMake it engaging and practical.\nEnsure there are 7 days.\nEnsure steps fit within the %s daily limit.\nStep ids must be unique across the whole plan.\n", p.TimeCommitment)
	return b.String()
}

func revisePrompt(plan model.Plan, p model.UserProfile, feedback string, customSearch bool) string {
	raw, _ := json.MarshalIndent(plan, "", "  ")
	var b strings.Builder
	b.WriteString("You are an expert curriculum designer. Revise the following learning plan based on user feedback.\n\nOriginal plan:\n")
	b.Write(raw)
	b.WriteString("\n\nUser profile:\n")
	b.WriteString(profileLines(p))
	fmt.Fprintf(&b, "\n\nUser feedback: %s\n\n", feedback)
	fmt.Fprintf(&b, "Revise the plan according to the feedback while maintaining the same JSON structure. Keep the same number of days (%d days) unless the feedback specifically requests a different duration. Ensure steps fit within the %s daily limit.\n\n",
		len(plan.Days), p.TimeCommitment)
	if customSearch {
		b.WriteString(`Note: URLs will be populated automatically. Focus on creating descriptive step titles.
For the "url" field, use an empty string "" - real URLs will be found via search.
`)
	} else {
		b.WriteString("Use Google Search to find real URLs for any new or changed resources.\n")
	}
	b.WriteString("\nReturn ONLY raw JSON (no markdown formatting, no code blocks) with this exact structure:\n")
	b.WriteString(shapeFor(customSearch))
	return b.String()
}

func planContextPrefix(plan *model.Plan) string {
	if plan == nil {
		return ""
	}
	raw, err := json.Marshal(plan)
	if err != nil {
		return ""
	}
	return "System Context: The user is following this learning plan. Use it to answer questions contextually.\n\n" + string(raw) + "\n\n"
}
