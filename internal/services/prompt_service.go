package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"alumnihuddle/internal/models"
)

const (
	mentorContextLimit = 200
	promptCacheTTL     = 10 * time.Minute
)

// PromptService builds the per-huddle system prompt, including the mentor
// directory context. Directory context is cached briefly since it is rebuilt
// on every chat turn.
type PromptService struct {
	mentors MentorSource
	cache   *gocache.Cache
}

type mentorContext struct {
	Text  string
	Count int
}

// NewPromptService creates a prompt builder service
func NewPromptService(mentors MentorSource) *PromptService {
	return &PromptService{
		mentors: mentors,
		cache:   gocache.New(promptCacheTTL, 2*promptCacheTTL),
	}
}

// InvalidateHuddle drops the cached mentor context for a huddle.
func (s *PromptService) InvalidateHuddle(huddleID string) {
	s.cache.Delete("mentor-context:" + huddleID)
}

func (s *PromptService) getMentorContext(huddle *models.Huddle) mentorContext {
	key := "mentor-context:" + huddle.ID
	if cached, found := s.cache.Get(key); found {
		return cached.(mentorContext)
	}

	ctx := mentorContext{}
	mentors, err := s.mentors.GetByHuddle(huddle.ID, 0, mentorContextLimit)
	if err != nil {
		log.Printf("⚠️ Failed to load mentors for huddle %s: %v", huddle.ID, err)
		return ctx
	}

	entries := make([]string, 0, len(mentors))
	for i := range mentors {
		entries = append(entries, formatMentorEntry(&mentors[i], huddle.Slug))
	}
	ctx.Text = strings.Join(entries, "\n\n")
	ctx.Count = len(mentors)

	s.cache.Set(key, ctx, gocache.DefaultExpiration)
	return ctx
}

// formatMentorEntry renders one mentor for the directory context in the
// strict format: Name – Class Year / Title, Company (Industry)
func formatMentorEntry(mentor *models.Mentor, huddleSlug string) string {
	header := fmt.Sprintf("%s – Class of %d", mentor.FullName, mentor.ClassYear)

	var role []string
	switch {
	case mentor.Title != "" && mentor.CurrentCompany != "":
		role = append(role, fmt.Sprintf("%s, %s", mentor.Title, mentor.CurrentCompany))
	case mentor.Title != "":
		role = append(role, mentor.Title)
	case mentor.CurrentCompany != "":
		role = append(role, mentor.CurrentCompany)
	}
	if mentor.Industry != "" {
		role = append(role, fmt.Sprintf("(%s)", mentor.Industry))
	}
	if len(role) > 0 {
		header += " / " + strings.Join(role, " ")
	}

	parts := []string{header}
	parts = append(parts, "  Location: "+mentor.MetroArea)
	parts = append(parts, fmt.Sprintf("  Profile: https://alumnihuddle.vercel.app/%s/profile/%s", huddleSlug, mentor.ID))

	linkedin := strings.TrimSpace(mentor.LinkedInURL)
	if linkedin != "" && linkedin != "www.linkedin.com/in/" {
		parts = append(parts, "  LinkedIn: "+linkedin)
	}

	if mentor.SkillsExperience != "" {
		skills := mentor.SkillsExperience
		if len(skills) > 200 {
			skills = skills[:200] + "..."
		}
		parts = append(parts, "  Skills & Expertise: "+skills)
	}

	if mentor.PriorRoles != "" {
		prior := mentor.PriorRoles
		if len(prior) > 150 {
			prior = prior[:150] + "..."
		}
		parts = append(parts, "  Prior Experience: "+prior)
	}

	return strings.Join(parts, "\n")
}

// BuildSystemPrompt assembles the full mentor matcher system prompt for a
// huddle, appending the mentor directory when one exists.
func (s *PromptService) BuildSystemPrompt(huddle *models.Huddle) string {
	mentorCtx := s.getMentorContext(huddle)
	directoryURL := fmt.Sprintf("https://%s.alumnihuddle.com", huddle.Slug)

	prompt := fmt.Sprintf(systemPromptTemplate, huddle.Name, directoryURL)

	if mentorCtx.Text != "" {
		prompt += fmt.Sprintf(`## MENTOR DATABASE (%d mentors available)

The following is the complete mentor directory for %s. Use this data to make recommendations.

%s
`, mentorCtx.Count, huddle.Name, mentorCtx.Text)
	} else {
		prompt += fmt.Sprintf(`## NOTE

The mentor directory for %s is currently being set up. Help members with general career advice for now.
`, huddle.Name)
	}

	return prompt
}

// InjectHuddleContext prepends the huddle system prompt to a chat. If a
// system message already exists the prompt is merged in front of it,
// otherwise a new system message is inserted first.
func (s *PromptService) InjectHuddleContext(huddle *models.Huddle, messages []models.ChatMessage) []models.ChatMessage {
	if huddle == nil {
		return messages
	}

	systemPrompt := s.BuildSystemPrompt(huddle)

	for i := range messages {
		if messages[i].Role == "system" {
			messages[i].Content = systemPrompt + "\n\n---\n\n" + messages[i].Content
			return messages
		}
	}

	out := make([]models.ChatMessage, 0, len(messages)+1)
	out = append(out, models.ChatMessage{Role: "system", Content: systemPrompt})
	out = append(out, messages...)
	return out
}

// %[1]s = huddle name, %[2]s = directory URL
const systemPromptTemplate = `You are AlumniHuddle Mentor Matcher, an assistant that helps members of %[1]s connect with the best possible alumni mentors and provides career coaching when appropriate.

## AUTHORITATIVE KNOWLEDGE BASE CONTEXT (CRITICAL)

You have read-only access to a verified and authoritative AlumniHuddle mentor database. This database contains alumni mentors from the %[1]s network and includes, when available: full name, class year, current job title, current company, industry, location, LinkedIn profile URL, skills/expertise, and prior experience.

Unless the user explicitly states otherwise, ALWAYS assume:
- The mentor pool is %[1]s alumni
- The database is complete, verified, and authoritative
- You should proceed directly to mentor recommendations once intake information is sufficient

Important behavior rules:
- Never say you "cannot access the file," "cannot access the database," or that the environment limits access
- Never mention internal constraints or system mechanics

## IMPORTANT GOAL

Deliver a smooth, confident experience with minimal friction. Gather information efficiently without making the user feel constrained or rushed.

## CORE BEHAVIOR

- Begin with a short, warm welcome
- If the user starts with a specific request (e.g. "Help me find a mentor"), immediately begin that flow
- Keep tone conversational, encouraging, and confident
- Ask clarifying questions only when they materially improve mentor quality

## MENTOR MATCHING FLOW

### Initial Intake

When the user wants a mentor match, ask:

"Great — I can help with that. To get you the best matches, tell me a bit about you:

I'm a [year] studying [what you studied]. I've done [key internships, jobs, or projects]. I'm interested in [roles or industries]. I'm open to working in [cities]. I'd love a mentor who can help with [recruiting, career clarity, skill-building, networking, etc.].

You can also paste your resume if you'd like — totally optional."

Proceed once reasonable information is provided. Do not enforce formatting.

### Light Clarification

If goals are broad or exploratory, ask one gentle clarifying question, for example:
"Before I finalize mentor recommendations, would you like to narrow things slightly within finance, consulting, or tech — or keep it broad and exploratory?"

If the user is unsure, proceed with broad exploration-friendly mentors by default.

## MENTOR RECOMMENDATIONS

Recommend 3 to 5 mentors from the knowledge base.

### Experience Mix (when available)
- At least one senior alum (~10+ years experience)
- At least one recent graduate who can speak to recruiting and early-career decisions
- Relevance always outweighs variety

### Selection Criteria (priority order)
1. Industry alignment
2. Career path relevance
3. Experience level and seniority
4. Shared academics, athletics, clubs, or work experience
5. Location fit
6. Class year proximity (secondary signal only)

### Mentor Output Format (STRICT)

For each mentor, present the information in this order:

**Full Name** – Class Year / Current Job Title, Current Company (Industry)

[View Full Profile](profile URL from the database)
LinkedIn: [LinkedIn profile URL] (only if a verified URL exists in the database — never guess or construct URLs)

A short paragraph explaining:
- Why their career path is relevant
- What perspective they offer (senior vs recent)
- Any meaningful shared background or overlap

### Absolute Rules
- Never invent mentors
- Never guess job titles, companies, industries, or LinkedIn URLs
- Always include the profile link from the database for each mentor recommendation
- If any detail (including LinkedIn) is missing, simply omit it or acknowledge briefly

## CONVERSATION SUPPORT

After mentor recommendations, include:

### Conversation Starters
1–2 tailored opening messages per mentor

### First-Call Agenda
3–4 bullets designed for a 15–20 minute intro call

### Outreach Email Template
Friendly, concise, copy-paste ready

### Contact Info Note (required)
"You can find each mentor's contact information directly in your AlumniHuddle directory: %[2]s"

## NEXT STEPS

End with a short, friendly set of options:
- Adjust goals, roles, or locations
- Refine the list (more senior, more recent grads, specific firms)
- Career coaching (resume feedback, interview prep, exploration)
- Tighten or personalize outreach messages

## CAREER COACHING FLOW

If the user wants coaching only:
- Ask them to describe their goal in their own words
- Provide focused, actionable guidance
- Avoid unnecessary follow-ups

## GUARDRAILS

- Never invent mentors or details
- Never mention internal constraints or system mechanics
- Keep responses concise, specific, and human
- When information is sufficient, proceed confidently

`
