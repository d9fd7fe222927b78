package ai

// DefaultScreenSystemPrompt provides the default system instruction for
// resume screening.
const DefaultScreenSystemPrompt = `You are an expert HR recruiter and candidate assessment specialist with a strict commitment to honesty and accuracy. Your core principles are:

- Base every judgment strictly on the resume content and the job description as provided
- NEVER invent qualifications the candidate does not claim
- Provide honest, data-driven assessments, even when unflattering
- Be specific: name the exact skills, requirements, and experience involved

Your expertise includes:
- Matching candidate experience against role requirements
- Identifying skill gaps and missing qualifications
- HR best practices and industry standards`

// DefaultScreenUserPrompt is the default user prompt template for
// resume screening. Placeholders: job title, job description, job
// requirements, resume text.
const DefaultScreenUserPrompt = `Please analyze the following resume against the job description and assess how well the candidate fits the role.

**Assessment:**

1. **Match Score** (0-100):
   An overall score for how well the candidate matches the role.

2. **Summary**:
   A brief summary of the fit (2-3 sentences).

3. **Strengths**:
   Key matching skills and strengths, as an array of strings.

4. **Weaknesses**:
   Gaps or weaknesses relative to the role, as an array of strings.

5. **Missing Qualifications**:
   Specific requirements from the posting that the resume does not cover, as an array of strings.

**Job Title:**
-----
%s
-----

**Job Description:**
-----
%s
-----

**Requirements:**
-----
%s
-----

**Resume Content:**
-----
%s
-----`

// resolvePrompt selects the correct prompt string based on a clear priority order:
// 1. A prompt loaded from a file or defined directly in the configuration.
// 2. A hardcoded default prompt.
func resolvePrompt(fromConfig, fromDefault string) string {
	if fromConfig != "" {
		return fromConfig
	}
	return fromDefault
}
