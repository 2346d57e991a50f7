package fetch

import (
	"net/url"
	"strings"
)

// PlatformName identifies a known job board.
type PlatformName string

// Known job boards
const (
	PlatformGreenhouse PlatformName = "greenhouse"
	PlatformLever      PlatformName = "lever"
	PlatformWorkday    PlatformName = "workday"
	PlatformAshby      PlatformName = "ashby"
	PlatformUnknown    PlatformName = "unknown"
)

// Platform holds the host patterns and selectors for one job board.
type Platform struct {
	Name    PlatformName
	hosts   []string
	content []string
	noise   []string
}

// commonNoise strips application forms, EEO blocks and share widgets,
// which every board appends to the posting.
var commonNoise = []string{
	"form",
	"#application-form",
	".application-form",
	".apply-button-container",
	"[data-testid='application-form']",
	".voluntary-disclosure",
	".eeo-statement",
	".eeo-section",
	".legal-disclosure",
	".social-share",
	".share-buttons",
	".cookie-consent",
	".gdpr-notice",
}

var platforms = []Platform{
	{
		Name:  PlatformGreenhouse,
		hosts: []string{"greenhouse.io"},
		content: []string{
			".job__description.body",
			".job__description",
			".job-description__content",
			"#content",
			".job-post-container",
		},
		noise: []string{".application--wrapper", ".voluntary-self-id", "#usa_self_id_section", ".post-apply"},
	},
	{
		Name:    PlatformLever,
		hosts:   []string{"lever.co"},
		content: []string{".posting-page", ".section-wrapper.page-full-width", ".posting-description", ".content"},
		noise:   []string{".apply-section", ".lever-application-form", ".posting-apply"},
	},
	{
		Name:    PlatformWorkday,
		hosts:   []string{"myworkdayjobs.com", "workday.com"},
		content: []string{"[data-automation-id='jobDescription']", ".gwt-HTML", ".job-description"},
		noise:   []string{"[data-automation-id='applyButton']", ".application-section"},
	},
	{
		Name:    PlatformAshby,
		hosts:   []string{"ashbyhq.com"},
		content: []string{"[class*='descriptionText']", "main"},
		noise:   []string{"[class*='applicationForm']"},
	},
}

// DetectPlatform identifies the job board from a URL.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return Platform{Name: PlatformUnknown}
	}
	host := strings.ToLower(parsed.Hostname())
	for _, p := range platforms {
		for _, h := range p.hosts {
			if host == h || strings.HasSuffix(host, "."+h) {
				return p
			}
		}
	}
	return Platform{Name: PlatformUnknown}
}

// ContentSelectors returns the selectors tried in order for the posting body.
func (p Platform) ContentSelectors() []string {
	if len(p.content) == 0 {
		return JobPostingSelectors()
	}
	return append(append([]string{}, p.content...), JobPostingSelectors()...)
}

// NoiseSelectors returns the elements removed before extraction.
func (p Platform) NoiseSelectors() []string {
	return append(append([]string{}, commonNoise...), p.noise...)
}
