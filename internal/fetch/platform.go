package fetch

import (
	"net/url"
	"strings"
)

// Platform names the job board a posting was fetched from.
type Platform string

const (
	PlatformGreenhouse      Platform = "greenhouse"
	PlatformLever           Platform = "lever"
	PlatformWorkday         Platform = "workday"
	PlatformAshby           Platform = "ashby"
	PlatformSmartRecruiters Platform = "smartrecruiters"
	PlatformLinkedIn        Platform = "linkedin"
	PlatformIndeed          Platform = "indeed"
	PlatformUnknown         Platform = "unknown"
)

// boardProfile describes where a board keeps the posting body and which of its
// page furniture should never reach the analyzer.
type boardProfile struct {
	platform Platform
	domains  []string
	content  []string
	noise    []string
}

// boards is checked in order; the first profile with a matching domain wins.
var boards = []boardProfile{
	{
		platform: PlatformGreenhouse,
		domains:  []string{"greenhouse.io"},
		content:  []string{".job__description.body", ".job__description", "#content", ".job-post-container"},
		noise:    []string{".application--wrapper", ".voluntary-self-id", "#usa_self_id_section"},
	},
	{
		platform: PlatformLever,
		domains:  []string{"lever.co"},
		content:  []string{".posting-page", ".posting-description", ".section-wrapper.page-full-width"},
		noise:    []string{".posting-apply", ".apply-section", ".postings-btn-wrapper"},
	},
	{
		platform: PlatformWorkday,
		domains:  []string{"myworkdayjobs.com", "workday.com"},
		content:  []string{"[data-automation-id='jobPostingDescription']", "[data-automation-id='jobDescription']"},
		noise:    []string{"[data-automation-id='applyButton']", "[data-automation-id='similarJobs']"},
	},
	{
		platform: PlatformAshby,
		domains:  []string{"ashbyhq.com"},
		content:  []string{"[class*='descriptionText']", "[class*='jobPosting']"},
		noise:    []string{"[class*='applicationForm']"},
	},
	{
		platform: PlatformSmartRecruiters,
		domains:  []string{"smartrecruiters.com"},
		content:  []string{".job-sections", "[itemprop='description']"},
		noise:    []string{".job-apply", ".social-share-block"},
	},
	{
		platform: PlatformLinkedIn,
		domains:  []string{"linkedin.com"},
		content:  []string{".show-more-less-html__markup", ".description__text"},
		noise:    []string{".sign-in-modal", ".join-form", ".similar-jobs"},
	},
	{
		platform: PlatformIndeed,
		domains:  []string{"indeed.com"},
		content:  []string{"#jobDescriptionText"},
		noise:    []string{"#applyButtonLinkContainer", ".jobsearch-RelatedLinks"},
	},
}

// sharedNoise is stripped on every board: application forms, EEO boilerplate
// and cookie banners.
var sharedNoise = []string{
	"form",
	"#application-form",
	".application-form",
	".eeo-statement",
	".eeo-section",
	".voluntary-disclosure",
	".legal-disclosure",
	".social-share",
	".cookie-banner",
	".cookie-consent",
}

// DetectPlatform identifies the job board from a URL's host.
func DetectPlatform(urlStr string) Platform {
	if b, ok := lookupBoard(urlStr); ok {
		return b.platform
	}
	return PlatformUnknown
}

func lookupBoard(urlStr string) (boardProfile, bool) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return boardProfile{}, false
	}
	host := strings.ToLower(parsed.Hostname())
	for _, b := range boards {
		for _, domain := range b.domains {
			if hostIs(host, domain) {
				return b, true
			}
		}
	}
	return boardProfile{}, false
}

func hostIs(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}

func profileFor(platform Platform) (boardProfile, bool) {
	for _, b := range boards {
		if b.platform == platform {
			return b, true
		}
	}
	return boardProfile{}, false
}

// PlatformContentSelectors lists where the posting body lives, most specific
// first. Board selectors are followed by the generic ones so a redesigned
// page still yields text.
func PlatformContentSelectors(platform Platform) []string {
	b, ok := profileFor(platform)
	if !ok {
		return JobPostingSelectors()
	}
	out := make([]string, 0, len(b.content)+len(JobPostingSelectors()))
	out = append(out, b.content...)
	return append(out, JobPostingSelectors()...)
}

// PlatformNoiseSelectors lists elements removed before text extraction.
func PlatformNoiseSelectors(platform Platform) []string {
	out := append([]string(nil), sharedNoise...)
	if b, ok := profileFor(platform); ok {
		out = append(out, b.noise...)
	}
	return out
}
