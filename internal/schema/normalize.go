package schema

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"resumeforge/internal/errors"
)

// Normalize merges an arbitrary partial candidate over the default document
// and returns a fully populated ResumeDocument. The contract is strict on
// type, lenient on presence: missing fields fill from defaults and values of
// the wrong shape fall back silently, but a present enum value outside its
// closed set is a SchemaViolation.
//
// Sequence fields replace the default wholesale when the candidate value is
// array-typed at all; they are never element-wise merged. Nested objects
// (personalInformation, technicalSkills, references, resumeSettings) merge
// key by key one level deep. Normalize is idempotent and side-effect free.
func Normalize(candidate any) (ResumeDocument, error) {
	doc := DefaultDocument()

	m, ok := candidateMap(candidate)
	if !ok {
		return doc, nil
	}

	doc.ResumeID = stringField(m, "resumeId", doc.ResumeID)
	doc.ResumeTitle = stringField(m, "resumeTitle", doc.ResumeTitle)
	doc.TargetRole = stringField(m, "targetRole", doc.TargetRole)
	doc.TargetCompany = stringField(m, "targetCompany", doc.TargetCompany)
	doc.JobDescription = stringField(m, "jobDescription", doc.JobDescription)
	doc.TailoredResumeText = stringField(m, "tailoredResumeText", doc.TailoredResumeText)
	doc.ProfessionalSummary = stringField(m, "professionalSummary", doc.ProfessionalSummary)

	if err := mergePersonalInformation(&doc.PersonalInformation, m["personalInformation"]); err != nil {
		return ResumeDocument{}, err
	}
	mergeTechnicalSkills(&doc.TechnicalSkills, m["technicalSkills"])

	var err error
	if doc.WorkExperience, err = mergeWorkExperience(m["workExperience"], doc.WorkExperience); err != nil {
		return ResumeDocument{}, err
	}
	if doc.Education, err = mergeEducation(m["education"], doc.Education); err != nil {
		return ResumeDocument{}, err
	}
	doc.Projects = mergeProjects(m["projects"], doc.Projects)
	doc.Certifications = mergeCertifications(m["certifications"], doc.Certifications)
	doc.Publications = mergePublications(m["publications"], doc.Publications)
	if doc.OpenSource, err = mergeOpenSource(m["openSource"], doc.OpenSource); err != nil {
		return ResumeDocument{}, err
	}
	doc.Awards = mergeAwards(m["awards"], doc.Awards)
	if doc.Languages, err = mergeLanguages(m["languages"], doc.Languages); err != nil {
		return ResumeDocument{}, err
	}
	doc.VolunteerExperience = mergeVolunteerExperience(m["volunteerExperience"], doc.VolunteerExperience)
	doc.ProfessionalMemberships = stringsValue(m["professionalMemberships"], doc.ProfessionalMemberships)

	mergeReferences(&doc.References, m["references"])

	if err := mergeSettings(&doc.ResumeSettings, m["resumeSettings"]); err != nil {
		return ResumeDocument{}, err
	}

	return doc, nil
}

// candidateMap reduces any candidate value to generic decoded JSON. A value
// that does not represent a JSON object yields ok=false and the caller keeps
// the defaults.
func candidateMap(candidate any) (map[string]any, bool) {
	if candidate == nil {
		return nil, false
	}

	var data []byte
	switch v := candidate.(type) {
	case json.RawMessage:
		data = v
	case []byte:
		data = v
	default:
		encoded, err := json.Marshal(candidate)
		if err != nil {
			return nil, false
		}
		data = encoded
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil || m == nil {
		return nil, false
	}
	return m, true
}

// stringField returns the candidate's string value for key when present and
// non-empty, else the default.
func stringField(m map[string]any, key, def string) string {
	if s, ok := m[key].(string); ok && s != "" {
		return s
	}
	return def
}

func boolValue(v any, def bool) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return def
}

// stringsValue replaces def wholesale when v is array-typed, keeping only
// string elements.
func stringsValue(v any, def []string) []string {
	arr, ok := v.([]any)
	if !ok {
		return def
	}
	out := make([]string, 0, len(arr))
	for _, elem := range arr {
		if s, ok := elem.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// enumValue validates a candidate enum slot against its closed set. Absent
// or empty values take the default; anything else outside the set is a
// SchemaViolation.
func enumValue(v any, allowed []string, def, field string) (string, error) {
	switch s := v.(type) {
	case nil:
		return def, nil
	case string:
		if s == "" {
			return def, nil
		}
		if slices.Contains(allowed, s) {
			return s, nil
		}
		return "", errors.NewSchemaViolation(
			fmt.Sprintf("%s must be one of %v, got %q", field, allowed, s), nil)
	default:
		return "", errors.NewSchemaViolation(
			fmt.Sprintf("%s must be a string from %v", field, allowed), nil)
	}
}

// itemID keeps a candidate item's identifier or mints one. Identifiers are
// stable once assigned: a second normalization pass sees the id and keeps it.
func itemID(m map[string]any) string {
	if s, ok := m["id"].(string); ok && s != "" {
		return s
	}
	return uuid.NewString()
}

func mergePersonalInformation(pi *PersonalInformation, v any) error {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}

	pi.FirstName = stringField(m, "firstName", pi.FirstName)
	pi.LastName = stringField(m, "lastName", pi.LastName)
	pi.MiddleName = stringField(m, "middleName", pi.MiddleName)
	pi.PreferredName = stringField(m, "preferredName", pi.PreferredName)
	pi.Email = stringField(m, "email", pi.Email)
	pi.PhoneNumber = stringField(m, "phoneNumber", pi.PhoneNumber)
	pi.LinkedinURL = stringField(m, "linkedinUrl", pi.LinkedinURL)
	pi.GithubURL = stringField(m, "githubUrl", pi.GithubURL)
	pi.PortfolioURL = stringField(m, "portfolioUrl", pi.PortfolioURL)
	pi.Location = stringField(m, "location", pi.Location)

	relocate, err := enumValue(m["willingToRelocate"], RelocationOptions,
		pi.WillingToRelocate, "personalInformation.willingToRelocate")
	if err != nil {
		return err
	}
	pi.WillingToRelocate = relocate
	return nil
}

func mergeTechnicalSkills(ts *TechnicalSkills, v any) {
	m, ok := v.(map[string]any)
	if !ok {
		return
	}

	ts.ProgrammingLanguages = stringsValue(m["programmingLanguages"], ts.ProgrammingLanguages)
	ts.FrameworksLibraries = stringsValue(m["frameworksLibraries"], ts.FrameworksLibraries)
	ts.Databases = stringsValue(m["databases"], ts.Databases)
	ts.CloudPlatforms = stringsValue(m["cloudPlatforms"], ts.CloudPlatforms)
	ts.DevOpsTools = stringsValue(m["devOpsTools"], ts.DevOpsTools)
	ts.DevelopmentTools = stringsValue(m["developmentTools"], ts.DevelopmentTools)
	ts.Methodologies = stringsValue(m["methodologies"], ts.Methodologies)
	ts.OtherSkills = stringsValue(m["otherSkills"], ts.OtherSkills)
}

func mergeWorkExperience(v any, def []WorkExperience) ([]WorkExperience, error) {
	items, ok := v.([]any)
	if !ok {
		return def, nil
	}

	out := make([]WorkExperience, 0, len(items))
	for _, raw := range items {
		m, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		employment, err := enumValue(m["employmentType"], EmploymentTypes,
			EmploymentTypes[0], "workExperience.employmentType")
		if err != nil {
			return nil, err
		}
		out = append(out, WorkExperience{
			ID:               itemID(m),
			JobTitle:         stringField(m, "jobTitle", ""),
			CompanyName:      stringField(m, "companyName", ""),
			CompanyLocation:  stringField(m, "companyLocation", ""),
			EmploymentType:   employment,
			StartDate:        stringField(m, "startDate", ""),
			EndDate:          stringField(m, "endDate", ""),
			CurrentlyWorking: boolValue(m["currentlyWorking"], false),
			Responsibilities: stringsValue(m["responsibilities"], []string{}),
			Achievements:     stringsValue(m["achievements"], []string{}),
			Technologies:     stringsValue(m["technologies"], []string{}),
		})
	}
	return out, nil
}

func mergeEducation(v any, def []Education) ([]Education, error) {
	items, ok := v.([]any)
	if !ok {
		return def, nil
	}

	out := make([]Education, 0, len(items))
	for _, raw := range items {
		m, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		degree, err := enumValue(m["degreeType"], DegreeTypes,
			DegreeTypes[0], "education.degreeType")
		if err != nil {
			return nil, err
		}
		out = append(out, Education{
			ID:                  itemID(m),
			DegreeType:          degree,
			FieldOfStudy:        stringField(m, "fieldOfStudy", ""),
			InstitutionName:     stringField(m, "institutionName", ""),
			InstitutionLocation: stringField(m, "institutionLocation", ""),
			StartDate:           stringField(m, "startDate", ""),
			GraduationDate:      stringField(m, "graduationDate", ""),
			GPA:                 stringField(m, "gpa", ""),
			Coursework:          stringField(m, "coursework", ""),
			Honors:              stringField(m, "honors", ""),
		})
	}
	return out, nil
}

func mergeProjects(v any, def []Project) []Project {
	items, ok := v.([]any)
	if !ok {
		return def
	}

	out := make([]Project, 0, len(items))
	for _, raw := range items {
		m, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, Project{
			ID:           itemID(m),
			ProjectName:  stringField(m, "projectName", ""),
			Description:  stringField(m, "description", ""),
			Role:         stringField(m, "role", ""),
			Technologies: stringsValue(m["technologies"], []string{}),
			ProjectURL:   stringField(m, "projectUrl", ""),
			GithubRepo:   stringField(m, "githubRepo", ""),
			StartDate:    stringField(m, "startDate", ""),
			EndDate:      stringField(m, "endDate", ""),
			Achievements: stringsValue(m["achievements"], []string{}),
		})
	}
	return out
}

func mergeCertifications(v any, def []Certification) []Certification {
	items, ok := v.([]any)
	if !ok {
		return def
	}

	out := make([]Certification, 0, len(items))
	for _, raw := range items {
		m, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, Certification{
			ID:                  itemID(m),
			CertificationName:   stringField(m, "certificationName", ""),
			IssuingOrganization: stringField(m, "issuingOrganization", ""),
			IssueDate:           stringField(m, "issueDate", ""),
			ExpirationDate:      stringField(m, "expirationDate", ""),
			CredentialID:        stringField(m, "credentialId", ""),
			CredentialURL:       stringField(m, "credentialUrl", ""),
		})
	}
	return out
}

func mergePublications(v any, def []Publication) []Publication {
	items, ok := v.([]any)
	if !ok {
		return def
	}

	out := make([]Publication, 0, len(items))
	for _, raw := range items {
		m, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, Publication{
			ID:        itemID(m),
			Title:     stringField(m, "title", ""),
			CoAuthors: stringField(m, "coAuthors", ""),
			Date:      stringField(m, "date", ""),
			Publisher: stringField(m, "publisher", ""),
			URL:       stringField(m, "url", ""),
		})
	}
	return out
}

func mergeOpenSource(v any, def []OpenSourceContribution) ([]OpenSourceContribution, error) {
	items, ok := v.([]any)
	if !ok {
		return def, nil
	}

	out := make([]OpenSourceContribution, 0, len(items))
	for _, raw := range items {
		m, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		contribution, err := enumValue(m["contributionType"], ContributionTypes,
			ContributionTypes[1], "openSource.contributionType")
		if err != nil {
			return nil, err
		}
		out = append(out, OpenSourceContribution{
			ID:               itemID(m),
			ProjectName:      stringField(m, "projectName", ""),
			RepoURL:          stringField(m, "repoUrl", ""),
			ContributionType: contribution,
			Description:      stringField(m, "description", ""),
		})
	}
	return out, nil
}

func mergeAwards(v any, def []Award) []Award {
	items, ok := v.([]any)
	if !ok {
		return def
	}

	out := make([]Award, 0, len(items))
	for _, raw := range items {
		m, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, Award{
			ID:           itemID(m),
			AwardName:    stringField(m, "awardName", ""),
			Organization: stringField(m, "organization", ""),
			Date:         stringField(m, "date", ""),
			Description:  stringField(m, "description", ""),
		})
	}
	return out
}

func mergeLanguages(v any, def []LanguageSkill) ([]LanguageSkill, error) {
	items, ok := v.([]any)
	if !ok {
		return def, nil
	}

	out := make([]LanguageSkill, 0, len(items))
	for _, raw := range items {
		m, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		proficiency, err := enumValue(m["proficiency"], LanguageLevels,
			LanguageLevels[3], "languages.proficiency")
		if err != nil {
			return nil, err
		}
		out = append(out, LanguageSkill{
			ID:          itemID(m),
			Language:    stringField(m, "language", ""),
			Proficiency: proficiency,
		})
	}
	return out, nil
}

func mergeVolunteerExperience(v any, def []VolunteerExperience) []VolunteerExperience {
	items, ok := v.([]any)
	if !ok {
		return def
	}

	out := make([]VolunteerExperience, 0, len(items))
	for _, raw := range items {
		m, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, VolunteerExperience{
			ID:           itemID(m),
			Organization: stringField(m, "organization", ""),
			Role:         stringField(m, "role", ""),
			StartDate:    stringField(m, "startDate", ""),
			EndDate:      stringField(m, "endDate", ""),
			Description:  stringField(m, "description", ""),
		})
	}
	return out
}

func mergeReferences(refs *References, v any) {
	m, ok := v.(map[string]any)
	if !ok {
		return
	}

	refs.AvailableUponRequest = boolValue(m["availableUponRequest"], refs.AvailableUponRequest)

	contacts, ok := m["contacts"].([]any)
	if !ok {
		return
	}
	out := make([]ReferenceContact, 0, len(contacts))
	for _, raw := range contacts {
		cm, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, ReferenceContact{
			ID:      itemID(cm),
			Name:    stringField(cm, "name", ""),
			Title:   stringField(cm, "title", ""),
			Company: stringField(cm, "company", ""),
			Email:   stringField(cm, "email", ""),
			Phone:   stringField(cm, "phone", ""),
		})
	}
	refs.Contacts = out
}

func mergeSettings(settings *ResumeSettings, v any) error {
	m, ok := v.(map[string]any)
	if !ok {
		settings.SectionsVisibility[SectionPersonalInformation] = true
		return nil
	}

	template, err := enumValue(m["template"], TemplateOptions,
		settings.Template, "resumeSettings.template")
	if err != nil {
		return err
	}
	settings.Template = template

	colorScheme, err := enumValue(m["colorScheme"], ColorSchemes,
		settings.ColorScheme, "resumeSettings.colorScheme")
	if err != nil {
		return err
	}
	settings.ColorScheme = colorScheme

	fontFamily, err := enumValue(m["fontFamily"], FontFamilies,
		settings.FontFamily, "resumeSettings.fontFamily")
	if err != nil {
		return err
	}
	settings.FontFamily = fontFamily

	settings.SectionOrder = sectionOrderValue(m["sectionOrder"])
	mergeVisibility(settings.SectionsVisibility, m["sectionsVisibility"])

	// Pinned regardless of what the candidate says.
	settings.SectionsVisibility[SectionPersonalInformation] = true
	return nil
}

// sectionOrderValue accepts a candidate order only when it is an exact
// permutation of all 14 section keys. Partial or duplicated lists are
// rejected wholesale, never padded, so the permutation invariant holds.
func sectionOrderValue(v any) []SectionKey {
	arr, ok := v.([]any)
	if !ok || len(arr) != len(SectionKeys) {
		return DefaultSectionOrder()
	}

	seen := make(map[SectionKey]bool, len(SectionKeys))
	order := make([]SectionKey, 0, len(arr))
	for _, elem := range arr {
		s, ok := elem.(string)
		if !ok {
			return DefaultSectionOrder()
		}
		key := SectionKey(s)
		if !slices.Contains(SectionKeys, key) || seen[key] {
			return DefaultSectionOrder()
		}
		seen[key] = true
		order = append(order, key)
	}
	return order
}

// mergeVisibility overlays candidate booleans onto the total default
// mapping. Unknown keys and non-boolean values are dropped, keeping the
// mapping total over exactly the known section keys.
func mergeVisibility(dst map[SectionKey]bool, v any) {
	m, ok := v.(map[string]any)
	if !ok {
		return
	}
	for _, key := range SectionKeys {
		if b, ok := m[string(key)].(bool); ok {
			dst[key] = b
		}
	}
}
