package optimize

import (
	"strings"

	"latex-resume-backend/internal/content"
)

const defaultResumePrompt = `You are an expert ATS (Applicant Tracking System) resume optimizer.

Given the following LaTeX resume and job description, optimize the resume to maximize ATS compatibility while maintaining authenticity.

INSTRUCTIONS:
1. Identify key keywords and phrases from the job description
2. Modify the LaTeX resume to incorporate these keywords naturally
3. Adjust bullet points to align with job requirements
4. Maintain LaTeX formatting integrity
5. Keep the changes truthful - don't fabricate experience
6. Provide an ATS compatibility score (0-100)
7. Include specific suggestions for improvement`

const defaultCoverLetterPrompt = `You are an expert ATS (Applicant Tracking System) cover letter optimizer.

Given the following LaTeX cover letter template and job description, generate a personalized cover letter that maximizes ATS compatibility while maintaining authenticity.

INSTRUCTIONS:
1. Identify key keywords and phrases from the job description
2. Customize the cover letter to incorporate these keywords naturally
3. Align the content with job requirements and company values
4. Maintain LaTeX formatting integrity
5. Keep the content truthful and professional
6. Provide an ATS compatibility score (0-100)
7. Include specific suggestions for improvement`

// DefaultPrompt returns the built-in instructions used when the user has no
// custom prompt.
func DefaultPrompt(kind content.Kind) string {
	if kind == content.KindCoverLetter {
		return defaultCoverLetterPrompt
	}
	return defaultResumePrompt
}

// SystemPrompt is sent as the system message of every completion.
func SystemPrompt(kind content.Kind) string {
	if kind == content.KindCoverLetter {
		return "You are an expert ATS cover letter optimizer. Always respond with valid JSON."
	}
	return "You are an expert ATS resume optimizer. Always respond with valid JSON."
}

// BuildPrompt composes the user message from the instructions, the source
// document and the job description.
func BuildPrompt(instructions string, kind content.Kind, latex string, job content.JobDescription) string {
	section, noun := "RESUME", "resume"
	if kind == content.KindCoverLetter {
		section, noun = "COVER LETTER TEMPLATE", "cover letter"
	}

	var b strings.Builder
	b.WriteString(strings.TrimSpace(instructions))
	b.WriteString("\n\n")
	b.WriteString(section)
	b.WriteString(":\n")
	b.WriteString(latex)
	b.WriteString("\n\nJOB DESCRIPTION:\n")
	b.WriteString("Title: " + job.Title + "\n")
	b.WriteString("Company: " + job.CompanyOr("Not specified") + "\n")
	b.WriteString("Description: " + job.Description + "\n\n")
	b.WriteString("OUTPUT FORMAT:\n")
	b.WriteString("Return a JSON object with these fields:\n")
	b.WriteString("- optimized_latex: The complete optimized LaTeX " + noun + "\n")
	b.WriteString("- suggestions: A detailed explanation of changes made\n")
	b.WriteString("- ats_score: A number between 0-100 representing ATS compatibility")
	return b.String()
}
