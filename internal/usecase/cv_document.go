package usecase

import (
	"strings"
	"time"

	"applyfollow-backend/internal/domain"
	"applyfollow-backend/pkg/docx"
)

const (
	cvAccent    = "2E7D32"
	cvLinkColor = "0000FF"
	cvMuted     = "666666"
)

// renderCV lays out a CV as a Word document.
func renderCV(cv *domain.CV) ([]byte, error) {
	doc := docx.New()

	doc.Add(docx.Paragraph{
		Align: docx.AlignCenter,
		Runs: []docx.Run{{
			Text:   strings.ToUpper(cv.FullName),
			Bold:   true,
			SizePt: 24,
			Font:   "Arial",
			Color:  cvAccent,
		}},
	})

	contact := []string{cv.Email}
	if cv.Phone != "" {
		contact = append(contact, cv.Phone)
	}
	if cv.Address != "" {
		contact = append(contact, cv.Address)
	}
	doc.Add(docx.Paragraph{
		Align:        docx.AlignCenter,
		SpacingAfter: 6,
		Runs:         []docx.Run{{Text: strings.Join(contact, "  |  "), SizePt: 10}},
	})

	var links []string
	if cv.LinkedIn != "" {
		links = append(links, "LinkedIn: "+cv.LinkedIn)
	}
	if cv.GitHub != "" {
		links = append(links, "GitHub: "+cv.GitHub)
	}
	if len(links) > 0 {
		doc.Add(docx.Paragraph{
			Align:        docx.AlignCenter,
			SpacingAfter: 6,
			Runs:         []docx.Run{{Text: strings.Join(links, "  "), SizePt: 9, Color: cvLinkColor}},
		})
	}

	if cv.Summary != "" {
		sectionTitle(doc, "SUMMARY")
		doc.Add(docx.Paragraph{
			SpacingAfter: 10,
			Runs:         []docx.Run{{Text: cv.Summary, SizePt: 11}},
		})
	}

	if len(cv.Experiences) > 0 {
		sectionTitle(doc, "EXPERIENCE")
		for _, exp := range cv.Experiences {
			doc.Add(docx.Paragraph{
				Runs: []docx.Run{
					{Text: exp.Position + " at " + exp.Company, Bold: true, SizePt: 12},
					{Text: "  |  " + dateRange(exp.StartDate, exp.EndDate), Italic: true, SizePt: 10, Color: cvMuted},
				},
			})
			if exp.Description != "" {
				doc.Add(docx.Paragraph{Runs: []docx.Run{{Text: exp.Description, SizePt: 10}}})
			}
			doc.Add(docx.Paragraph{})
		}
	}

	if len(cv.Educations) > 0 {
		sectionTitle(doc, "EDUCATION")
		for _, edu := range cv.Educations {
			doc.Add(docx.Paragraph{
				Runs: []docx.Run{{Text: edu.Institution, Bold: true, SizePt: 12}},
			})
			doc.Add(docx.Paragraph{
				SpacingAfter: 10,
				Runs: []docx.Run{
					{Text: degreeLine(edu)},
					{Text: "  (" + dateRange(edu.StartDate, edu.EndDate) + ")", Italic: true, SizePt: 10, Color: cvMuted},
				},
			})
		}
	}

	if len(cv.Skills) > 0 {
		sectionTitle(doc, "SKILLS")
		names := make([]string, 0, len(cv.Skills))
		for _, s := range cv.Skills {
			names = append(names, s.Name)
		}
		doc.Add(docx.Paragraph{
			SpacingAfter: 10,
			Runs:         []docx.Run{{Text: strings.Join(names, " • ")}},
		})
	}

	if len(cv.Languages) > 0 {
		sectionTitle(doc, "LANGUAGES")
		for _, l := range cv.Languages {
			doc.AddText(l.Name+" ("+domain.NormalizeLanguageLevel(l.Level)+")", docx.Run{})
		}
		doc.Add(docx.Paragraph{})
	}

	if len(cv.Certificates) > 0 {
		sectionTitle(doc, "CERTIFICATES")
		for _, c := range cv.Certificates {
			runs := []docx.Run{{Text: c.Name, Bold: true}}
			if c.Issuer != "" {
				runs = append(runs, docx.Run{Text: " - " + c.Issuer})
			}
			if c.Date != "" {
				runs = append(runs, docx.Run{Text: " (" + monthYear(c.Date) + ")"})
			}
			doc.Add(docx.Paragraph{Runs: runs})
		}
	}

	return doc.Bytes()
}

func sectionTitle(doc *docx.Document, title string) {
	doc.Add(docx.Paragraph{
		BorderBottom:  true,
		BorderColor:   cvAccent,
		SpacingBefore: 6,
		SpacingAfter:  4,
		Runs:          []docx.Run{{Text: title, Bold: true, SizePt: 14, Color: cvAccent}},
	})
}

func degreeLine(edu domain.Education) string {
	switch {
	case edu.Degree != "" && edu.FieldOfStudy != "":
		return edu.Degree + " in " + edu.FieldOfStudy
	case edu.Degree != "":
		return edu.Degree
	default:
		return edu.FieldOfStudy
	}
}

// dateRange renders "Jan 2020 - Present" style ranges. A missing end date
// means the entry is current.
func dateRange(start, end string) string {
	to := "Present"
	if end != "" {
		to = monthYear(end)
	}
	return monthYear(start) + " - " + to
}

func monthYear(date string) string {
	t, err := time.Parse(domain.DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format("Jan 2006")
}

// cvFilename builds CV_<Full_Name>.docx from the user's name.
func cvFilename(fullName string) string {
	name := strings.Join(strings.Fields(fullName), "_")
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '"', ':', '*', '?', '<', '>', '|':
			return -1
		}
		return r
	}, name)
	if name == "" {
		name = "Resume"
	}
	return "CV_" + name + ".docx"
}
