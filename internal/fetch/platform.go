package fetch

import (
	"net/url"
	"strings"
)

// Platform is a job board recognized by host name.
type Platform string

// Known job boards.
const (
	PlatformGreenhouse      Platform = "greenhouse"
	PlatformLever           Platform = "lever"
	PlatformWorkday         Platform = "workday"
	PlatformAshby           Platform = "ashby"
	PlatformSmartRecruiters Platform = "smartrecruiters"
	PlatformUnknown         Platform = "unknown"
)

// boardProfile describes where a job board keeps the posting and what to strip.
type boardProfile struct {
	platform Platform
	domains  []string
	content  []string
	noise    []string
}

// boards is checked in order by DetectPlatform.
var boards = []boardProfile{
	{
		platform: PlatformGreenhouse,
		domains:  []string{"greenhouse.io"},
		content:  []string{".job__description.body", ".job__description", ".job-description__content", "#content", ".job-post-container"},
		noise:    []string{".application--wrapper", ".voluntary-self-id", ".voluntary-self-id-wrapper", "#usa_self_id_section", ".post-apply"},
	},
	{
		platform: PlatformLever,
		domains:  []string{"lever.co"},
		content:  []string{".posting-page", ".section-wrapper.page-full-width", ".posting-description", ".content"},
		noise:    []string{".apply-section", ".lever-application-form", ".posting-apply"},
	},
	{
		platform: PlatformWorkday,
		domains:  []string{"workday.com", "myworkdayjobs.com"},
		content:  []string{"[data-automation-id='jobDescription']", ".gwt-HTML", ".job-description"},
		noise:    []string{"[data-automation-id='applyButton']", ".application-section"},
	},
	{
		platform: PlatformAshby,
		domains:  []string{"ashbyhq.com"},
		content:  []string{"[class*='descriptionText']", ".ashby-job-posting-right-pane", "main"},
	},
	{
		platform: PlatformSmartRecruiters,
		domains:  []string{"smartrecruiters.com"},
		content:  []string{".job-sections", "[itemprop='description']", ".jobad-main", "main"},
	},
}

// boardNoise is removed from every posting: application forms, EEO
// disclosures, share widgets and cookie banners.
var boardNoise = []string{
	"form", "#application-form", ".application-form", ".application--container",
	".apply-button-container", "[data-testid='application-form']",
	".voluntary-disclosure", ".eeo-statement", ".eeo-section", "[data-testid='eeo']",
	".legal-disclosure", ".self-identification",
	".social-share", ".share-buttons", ".social-links",
	".cookie-banner", ".cookie-consent", ".gdpr-notice",
}

// DetectPlatform identifies the job board from a URL's host.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return PlatformUnknown
	}
	host := strings.ToLower(parsed.Host)
	for _, b := range boards {
		if hostMatches(host, b.domains...) {
			return b.platform
		}
	}
	return PlatformUnknown
}

// hostMatches reports whether host is one of domains or a subdomain of one.
func hostMatches(host string, domains ...string) bool {
	host = strings.TrimSuffix(strings.Split(host, ":")[0], ".")
	for _, d := range domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func profileFor(platform Platform) (boardProfile, bool) {
	for _, b := range boards {
		if b.platform == platform {
			return b, true
		}
	}
	return boardProfile{}, false
}

// PlatformContentSelectors returns the posting selectors for platform, most
// specific first. Unknown platforms get the generic job posting selectors.
func PlatformContentSelectors(platform Platform) []string {
	if b, ok := profileFor(platform); ok {
		return append([]string(nil), b.content...)
	}
	return JobPostingSelectors()
}

// PlatformNoiseSelectors returns the elements to strip for platform.
func PlatformNoiseSelectors(platform Platform) []string {
	out := append([]string(nil), boardNoise...)
	if b, ok := profileFor(platform); ok {
		out = append(out, b.noise...)
	}
	return out
}
