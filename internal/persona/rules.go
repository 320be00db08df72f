package persona

import "regexp"

// Rule is a named predicate over candidate text. A rule fails the text when
// Violated reports true. The rule name doubles as the rejection reason code,
// so rejections can be logged and tested without exposing the matched content.
type Rule struct {
	Name     string
	Violated func(text string) bool
}

func regexRule(name, pattern string) Rule {
	re := regexp.MustCompile(pattern)
	return Rule{Name: name, Violated: re.MatchString}
}

// firstViolation evaluates rules in order and returns the name of the first
// violated rule. Evaluation short-circuits on the first failure.
func firstViolation(text string, rules []Rule) (string, bool) {
	for _, r := range rules {
		if r.Violated(text) {
			return r.Name, true
		}
	}
	return "", false
}

// nameRules reject character names that carry prompt-injection keywords or
// code/template markers. Checked after the allow-list, so most of these can
// only fire on text that also slipped through it, but they are kept as an
// independent layer.
var nameRules = []Rule{
	regexRule("keyword_system", `(?i)\bsystem\b`),
	regexRule("keyword_prompt", `(?i)\bprompt\b`),
	regexRule("keyword_jailbreak", `(?i)jailbreak`),
	regexRule("keyword_ignore", `(?i)\bignore\b`),
	regexRule("keyword_instruction", `(?i)instruction`),
	regexRule("keyword_override", `(?i)override`),
	regexRule("keyword_bypass", `(?i)bypass`),
	regexRule("keyword_admin", `(?i)\badmin\b`),
	regexRule("keyword_root", `(?i)\broot\b`),
	regexRule("keyword_sudo", `(?i)\bsudo\b`),
	regexRule("keyword_assistant", `(?i)\bassistant\b`),
	regexRule("keyword_model", `(?i)\bmodel\b`),
	regexRule("keyword_developer", `(?i)\bdeveloper\b`),
	regexRule("template_braces", `\{\{|\}\}`),
	regexRule("template_dollar", `\$\{`),
	regexRule("script_tag", `(?i)<\s*script`),
	regexRule("js_url", `(?i)javascript\s*:`),
	regexRule("data_url", `(?i)data\s*:\s*text/html`),
	regexRule("function_decl", `(?i)\bfunction\s*\(`),
	regexRule("arrow_func", `=>`),
	regexRule("eval_call", `(?i)\beval\s*\(`),
}

// personalityRules reject personality text resembling instruction-override
// attempts. Grouped by attack family; the repetition guard is a plain
// function rule because RE2 has no backreferences.
var personalityRules = []Rule{
	// System-override attempts
	regexRule("override_ignore_instructions", `(?i)ignore\s+(all\s+|any\s+)?(previous|prior|above|earlier)\s+(instructions|prompts|rules|directions)`),
	regexRule("override_disregard", `(?i)disregard\s+.{0,30}(instructions|rules|prompts)`),
	regexRule("override_forget", `(?i)forget\s+(everything|all\s+of\s+it|your\s+(instructions|rules|training))`),
	regexRule("override_new_instructions", `(?i)new\s+(instructions|rules)\s*:`),
	regexRule("override_system_prompt", `(?i)system\s*(prompt|message|instruction|override)`),

	// Role-manipulation phrases
	regexRule("role_you_are_now", `(?i)you\s+are\s+(now|no\s+longer)`),
	regexRule("role_pretend", `(?i)pretend\s+(to\s+be|you\s+are)`),
	regexRule("role_act_as_ai", `(?i)\bact\s+as\s+(if|though|an?\s+ai)`),
	regexRule("role_stop_being", `(?i)stop\s+being`),
	regexRule("role_from_now_on", `(?i)from\s+now\s+on`),

	// Code-injection markers
	regexRule("code_template_braces", `\{\{|\}\}`),
	regexRule("code_template_dollar", `\$\{`),
	regexRule("code_script_tag", `(?i)<\s*script`),
	regexRule("code_js_url", `(?i)javascript\s*:`),
	regexRule("code_eval", `(?i)\b(eval|exec)\s*\(`),

	// Information-extraction prompts
	regexRule("extract_system_prompt", `(?i)(reveal|show|tell|print|repeat|output)\s+.{0,30}(system\s+prompt|your\s+(instructions|prompt|rules|guidelines))`),
	regexRule("extract_api_key", `(?i)api[\s_-]?key`),
	regexRule("extract_credentials", `(?i)(password|secret\s+key|access\s+token)`),

	// Suspicious markdown/code structures
	regexRule("markdown_code_fence", "```"),
	regexRule("markdown_html_comment", `<!--`),

	// All-caps directive keywords (case-sensitive on purpose)
	regexRule("caps_directive", `\b(IGNORE|SYSTEM|OVERRIDE|EXECUTE|BYPASS|ADMIN)\b`),

	// Pathological repetition (DoS guard)
	{Name: "repeated_run", Violated: hasExcessiveRepetition},

	// Character-breaking phrases
	regexRule("break_character", `(?i)break\s+character`),
	regexRule("break_out_of_character", `(?i)out\s+of\s+character`),
	regexRule("break_ai_nature", `(?i)(as\s+an\s+ai\b|you\s+are\s+an\s+ai\b|language\s+model)`),
}

// hasExcessiveRepetition reports whether the text contains the same run of
// 1 to 10 characters repeated 10 or more times consecutively.
func hasExcessiveRepetition(s string) bool {
	const maxUnitLen = 10
	const minRepeats = 10

	runes := []rune(s)
	for unit := 1; unit <= maxUnitLen; unit++ {
		if len(runes) < unit*minRepeats {
			break
		}
		for off := range unit {
			repeats := 1
			for i := off + unit; i+unit <= len(runes); i += unit {
				if runesEqual(runes[i:i+unit], runes[i-unit:i]) {
					repeats++
					if repeats >= minRepeats {
						return true
					}
				} else {
					repeats = 1
				}
			}
		}
	}
	return false
}

func runesEqual(a, b []rune) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
