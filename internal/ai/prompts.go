package ai

// Operation names used for config lookup, circuit breakers, audit records
// and metrics.
const (
	OpGapAnalysis  = "gap"
	OpAssessment   = "assess"
	OpStrategy     = "strategy"
	OpWriteResume  = "write"
	OpTrackChanges = "track"
)

// SystemPromptDefaults holds the built-in system prompts for each operation
type SystemPromptDefaults struct {
	GapAnalysis  string
	Assessment   string
	Strategy     string
	WriteResume  string
	TrackChanges string
}

// UserPromptDefaults holds the built-in user prompt templates. Templates
// are fmt.Sprintf format strings; argument order is documented per prompt.
type UserPromptDefaults struct {
	GapAnalysis  string
	Assessment   string
	Strategy     string
	WriteResume  string
	TrackChanges string
}

// DefaultSystemPrompts are used when no file or config override is present
var DefaultSystemPrompts = SystemPromptDefaults{
	GapAnalysis: `# Role
You are a Data Analytics resume gap analyzer.

# Task
Analyze the resume and identify what the candidate has versus what they need.

# Instructions
## Step 1: Report Experience Duration
- Calculate Data Analytics work duration in years from explicit dates only.
- Report the number of years; do not classify the candidate yourself.
## Step 2: Analyze Skills
- Extract and normalize all technical skills into skills_present.
- Compare against the provided market top 10 for the candidate's apparent level.
- skills_missing = market top 10 NOT in skills_present.
## Step 3: Evaluate Projects
- List projects found on the resume.
- Mark projects for removal if they lack Data Analytics tools or are off-domain.

Use exact skills from the resume for skills_present; never add unmentioned skills.`,

	Assessment: `# Role
You are a Data Analytics resume evaluator and ATS expert.

# Task
Evaluate resume quality and calculate scores using the gap analysis context.

# Instructions
## Step 1: Keyword Analysis
- Check keyword presence against the provided market data.
## Step 2: ATS Compatibility
- Assess structure and format for ATS friendliness. Keep reasoning to 1-2 sentences.
## Step 3: Calculate Scores
- Apply the provided scoring guidelines to output job relevance and ATS scores from 0 to 100.
## Step 4: Market Alignment
- Summarize in 1-2 sentences how the resume aligns with the market data.`,

	Strategy: `# Role
You are a Data Analytics career strategist with deep knowledge of the training curriculum.

# Task
Plan improvements to a resume using the gap analysis and the curriculum.

# Instructions
## Enhancements
- For each skill in skills_present, check if the curriculum offers advanced topics.
  Examples: Excel can be enhanced with Power Query; SQL with CTEs and Window
  Functions; Python with NumPy, Pandas, Matplotlib.
- base_skill must be copied verbatim from skills_present.
## Additions
- Map each skill in skills_missing to the curriculum module that teaches it.
- Never propose a skill outside skills_missing.
## Projects
- Propose exactly the requested number of replacement projects, drawn from
  curriculum case studies, each with its module, technologies and a short description.
## Curriculum Mapping
- List every module used and the skills it covers. Use exact module names.`,

	WriteResume: `# Role
You are an expert resume writer specializing in Data Analytics roles.

# Task
Rewrite the resume applying the improvement strategy.

# Rules
- Output the full improved resume as plain text, no JSON and no markdown fences.
- Keep every original hyperlink URL exactly as given; do not drop or rewrite URLs.
- Apply every enhancement, skill addition and project addition from the strategy.
- Remove the projects the strategy replaces; keep the rest.
- A Fresher resume must not contain a professional experience section.
- Keep the candidate's factual history; never invent employers or dates.`,

	TrackChanges: `# Role
You are a resume change auditor.

# Task
Compare the improved resume against the improvement strategy and report what
was applied.

# Instructions
- skills_added: strategy additions that appear in the improved text.
- skills_enhanced: strategy enhancements that appear in the improved text,
  reported by their base skill.
- projects_added: strategy project names that appear in the improved text.
- Only report entries that come from the strategy; it is the source of truth.
- Re-score the improved resume with the provided scoring guidelines.
- estimated_improvement: one sentence summarizing the expected score gain.`,
}

// DefaultUserPrompts are the built-in user prompt templates.
//
// Argument order:
//
//	GapAnalysis:  resume text, fresher skills, intermediate skills, experienced skills, vocabulary
//	Assessment:   resume text, gap analysis JSON, market data, scoring rubric
//	Strategy:     gap analysis JSON, replacement project count, curriculum
//	WriteResume:  level, current year, links, strategy JSON, resume text
//	TrackChanges: strategy JSON, gap analysis JSON, scoring rubric, improved text
var DefaultUserPrompts = UserPromptDefaults{
	GapAnalysis: `Resume:
%s

Market Top 10 Skills by Level (use only the detected level):
- Fresher: %s
- Intermediate: %s
- Experienced: %s

CURRICULUM_SKILLS = %s

Note: Use exact skills from the resume for skills_present; never add unmentioned skills.`,

	Assessment: `Resume:
%s

Gap Analysis:
%s

Market data (detected level):
%s

Scoring Guidelines:
%s`,

	Strategy: `Gap Analysis:
%s

Replacement projects required: %d

Curriculum:
%s`,

	WriteResume: `Candidate level: %s
Current year for certification targets: %d

Original hyperlinks (preserve every URL verbatim):
%s

Improvement Strategy:
%s

Original Resume:
%s`,

	TrackChanges: `Improvement Strategy (source of truth):
%s

Gap Analysis:
%s

Scoring Guidelines:
%s

Improved Resume:
%s`,
}

// DefaultScoringRubric is the embedded scoring guideline text, overridable
// via configuration or a rubric file.
const DefaultScoringRubric = `Scoring Guidelines (0-100):

Job Relevance Score:
- 80-100: Resume demonstrates most critical-demand market skills with projects to back them.
- 60-79: Solid core skills, some critical-demand gaps, relevant projects present.
- 40-59: Partial skill coverage or projects that do not demonstrate the skills claimed.
- 0-39: Few market-relevant skills, off-domain projects.

ATS Score:
- 80-100: Clean sections, standard headings, parseable contact info, keyword-rich.
- 60-79: Mostly parseable with minor structural issues.
- 40-59: Non-standard sections or sparse keywords.
- 0-39: Heavy formatting, missing sections, unparseable structure.`

// resolvePrompt selects the correct prompt string based on priority:
// a prompt loaded from a file, then one defined in the configuration,
// then the hardcoded default.
func resolvePrompt(loadedFromFile, fromConfig, fromDefault string) string {
	if loadedFromFile != "" {
		return loadedFromFile
	}
	if fromConfig != "" {
		return fromConfig
	}
	return fromDefault
}
