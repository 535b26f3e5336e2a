package schema

// DefaultTitle is the title assigned to a freshly created resume.
const DefaultTitle = "New Resume"

// DefaultDocument returns the fully populated empty resume. Every array is a
// non-nil empty slice and every enum carries its default value, so the result
// is already normalized: Normalize(DefaultDocument()) returns it unchanged.
func DefaultDocument() ResumeDocument {
	return ResumeDocument{
		ResumeTitle:        DefaultTitle,
		TargetRole:         "",
		TargetCompany:      "",
		JobDescription:     "",
		TailoredResumeText: "",
		PersonalInformation: PersonalInformation{
			WillingToRelocate: "Open",
		},
		ProfessionalSummary: "",
		WorkExperience:      []WorkExperience{},
		Education:           []Education{},
		TechnicalSkills: TechnicalSkills{
			ProgrammingLanguages: []string{},
			FrameworksLibraries:  []string{},
			Databases:            []string{},
			CloudPlatforms:       []string{},
			DevOpsTools:          []string{},
			DevelopmentTools:     []string{},
			Methodologies:        []string{},
			OtherSkills:          []string{},
		},
		Projects:                []Project{},
		Certifications:          []Certification{},
		Publications:            []Publication{},
		OpenSource:              []OpenSourceContribution{},
		Awards:                  []Award{},
		Languages:               []LanguageSkill{},
		VolunteerExperience:     []VolunteerExperience{},
		ProfessionalMemberships: []string{},
		References: References{
			AvailableUponRequest: true,
			Contacts:             []ReferenceContact{},
		},
		ResumeSettings: ResumeSettings{
			Template:           "chronological",
			ColorScheme:        "#000000",
			FontFamily:         "Calibri",
			SectionOrder:       DefaultSectionOrder(),
			SectionsVisibility: DefaultSectionsVisibility(),
		},
	}
}

// DefaultSectionOrder returns a fresh copy of the canonical section order.
func DefaultSectionOrder() []SectionKey {
	order := make([]SectionKey, len(SectionKeys))
	copy(order, SectionKeys)
	return order
}

// DefaultSectionsVisibility returns the total visibility mapping with every
// section visible.
func DefaultSectionsVisibility() map[SectionKey]bool {
	visibility := make(map[SectionKey]bool, len(SectionKeys))
	for _, key := range SectionKeys {
		visibility[key] = true
	}
	return visibility
}
