package adapt

// Raw provider record shapes. Each mirrors the provider's documented JSON for
// a single article; the envelopes around them live with the source clients.

// NewsAPIArticle is one record from the NewsAPI top-headlines or everything
// endpoints.
type NewsAPIArticle struct {
	Source struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
	Content     string `json:"content"`
}

// GuardianFields holds the optional show-fields block of a Guardian result.
type GuardianFields struct {
	Headline  string `json:"headline"`
	TrailText string `json:"trailText"`
	Thumbnail string `json:"thumbnail"`
	BodyText  string `json:"bodyText"`
	Byline    string `json:"byline"`
}

// GuardianArticle is one result from the Guardian content search endpoint.
type GuardianArticle struct {
	ID                 string          `json:"id"`
	Type               string          `json:"type"`
	SectionID          string          `json:"sectionId"`
	SectionName        string          `json:"sectionName"`
	WebPublicationDate string          `json:"webPublicationDate"`
	WebTitle           string          `json:"webTitle"`
	WebURL             string          `json:"webUrl"`
	APIURL             string          `json:"apiUrl"`
	Fields             *GuardianFields `json:"fields"`
}

// NYTimesMultimedia is one multimedia entry of an NYTimes article.
type NYTimesMultimedia struct {
	URL     string `json:"url"`
	Format  string `json:"format"`
	Height  int    `json:"height"`
	Width   int    `json:"width"`
	Type    string `json:"type"`
	Subtype string `json:"subtype"`
}

// NYTimesArticle is one doc from the NYTimes article search endpoint.
type NYTimesArticle struct {
	Abstract      string              `json:"abstract"`
	WebURL        string              `json:"web_url"`
	Snippet       string              `json:"snippet"`
	LeadParagraph string              `json:"lead_paragraph"`
	Source        string              `json:"source"`
	Multimedia    []NYTimesMultimedia `json:"multimedia"`
	Headline      struct {
		Main   string `json:"main"`
		Kicker string `json:"kicker"`
	} `json:"headline"`
	PubDate      string `json:"pub_date"`
	DocumentType string `json:"document_type"`
	NewsDesk     string `json:"news_desk"`
	SectionName  string `json:"section_name"`
	Byline       struct {
		Original string `json:"original"`
	} `json:"byline"`
	TypeOfMaterial string `json:"type_of_material"`
	ID             string `json:"_id"`
	WordCount      int    `json:"word_count"`
	URI            string `json:"uri"`
}
