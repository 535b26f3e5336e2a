package schema

// SectionKey identifies one of the fixed resume sections used for ordering
// and visibility control.
type SectionKey string

const (
	SectionPersonalInformation     SectionKey = "personalInformation"
	SectionProfessionalSummary     SectionKey = "professionalSummary"
	SectionWorkExperience          SectionKey = "workExperience"
	SectionEducation               SectionKey = "education"
	SectionTechnicalSkills         SectionKey = "technicalSkills"
	SectionProjects                SectionKey = "projects"
	SectionCertifications          SectionKey = "certifications"
	SectionPublications            SectionKey = "publications"
	SectionOpenSource              SectionKey = "openSource"
	SectionAwards                  SectionKey = "awards"
	SectionLanguages               SectionKey = "languages"
	SectionVolunteerExperience     SectionKey = "volunteerExperience"
	SectionProfessionalMemberships SectionKey = "professionalMemberships"
	SectionReferences              SectionKey = "references"
)

// SectionKeys is the canonical section order. sectionOrder must always be a
// permutation of exactly these 14 keys.
var SectionKeys = []SectionKey{
	SectionPersonalInformation,
	SectionProfessionalSummary,
	SectionWorkExperience,
	SectionEducation,
	SectionTechnicalSkills,
	SectionProjects,
	SectionCertifications,
	SectionPublications,
	SectionOpenSource,
	SectionAwards,
	SectionLanguages,
	SectionVolunteerExperience,
	SectionProfessionalMemberships,
	SectionReferences,
}

// Closed enumerations. First value doubles as the default when a candidate
// omits the field. Color and font whitelists exist to keep generated resumes
// ATS-safe, so they are never freeform.
var (
	EmploymentTypes   = []string{"Full-time", "Part-time", "Contract", "Internship", "Freelance"}
	DegreeTypes       = []string{"Bachelor's", "Master's", "PhD", "Associate", "Bootcamp", "Certificate"}
	TemplateOptions   = []string{"chronological", "simple", "professional"}
	RelocationOptions = []string{"Yes", "No", "Open"}
	LanguageLevels    = []string{"Native", "Fluent", "Professional", "Intermediate", "Basic"}
	ContributionTypes = []string{"Maintainer", "Contributor"}
	ColorSchemes      = []string{"#000000", "#111827", "#374151", "#4b5563"}
	FontFamilies      = []string{"Arial", "Times New Roman", "Calibri"}
)

// PersonalInformation holds the contact block of a resume.
type PersonalInformation struct {
	FirstName         string `json:"firstName" bson:"firstName"`
	LastName          string `json:"lastName" bson:"lastName"`
	MiddleName        string `json:"middleName" bson:"middleName"`
	PreferredName     string `json:"preferredName" bson:"preferredName"`
	Email             string `json:"email" bson:"email"`
	PhoneNumber       string `json:"phoneNumber" bson:"phoneNumber"`
	LinkedinURL       string `json:"linkedinUrl" bson:"linkedinUrl"`
	GithubURL         string `json:"githubUrl" bson:"githubUrl"`
	PortfolioURL      string `json:"portfolioUrl" bson:"portfolioUrl"`
	Location          string `json:"location" bson:"location"`
	WillingToRelocate string `json:"willingToRelocate" bson:"willingToRelocate"`
}

// WorkExperience is one identified entry in the work history.
type WorkExperience struct {
	ID               string   `json:"id" bson:"id"`
	JobTitle         string   `json:"jobTitle" bson:"jobTitle"`
	CompanyName      string   `json:"companyName" bson:"companyName"`
	CompanyLocation  string   `json:"companyLocation" bson:"companyLocation"`
	EmploymentType   string   `json:"employmentType" bson:"employmentType"`
	StartDate        string   `json:"startDate" bson:"startDate"`
	EndDate          string   `json:"endDate" bson:"endDate"`
	CurrentlyWorking bool     `json:"currentlyWorking" bson:"currentlyWorking"`
	Responsibilities []string `json:"responsibilities" bson:"responsibilities"`
	Achievements     []string `json:"achievements" bson:"achievements"`
	Technologies     []string `json:"technologies" bson:"technologies"`
}

type Education struct {
	ID                  string `json:"id" bson:"id"`
	DegreeType          string `json:"degreeType" bson:"degreeType"`
	FieldOfStudy        string `json:"fieldOfStudy" bson:"fieldOfStudy"`
	InstitutionName     string `json:"institutionName" bson:"institutionName"`
	InstitutionLocation string `json:"institutionLocation" bson:"institutionLocation"`
	StartDate           string `json:"startDate" bson:"startDate"`
	GraduationDate      string `json:"graduationDate" bson:"graduationDate"`
	GPA                 string `json:"gpa" bson:"gpa"`
	Coursework          string `json:"coursework" bson:"coursework"`
	Honors              string `json:"honors" bson:"honors"`
}

type Project struct {
	ID           string   `json:"id" bson:"id"`
	ProjectName  string   `json:"projectName" bson:"projectName"`
	Description  string   `json:"description" bson:"description"`
	Role         string   `json:"role" bson:"role"`
	Technologies []string `json:"technologies" bson:"technologies"`
	ProjectURL   string   `json:"projectUrl" bson:"projectUrl"`
	GithubRepo   string   `json:"githubRepo" bson:"githubRepo"`
	StartDate    string   `json:"startDate" bson:"startDate"`
	EndDate      string   `json:"endDate" bson:"endDate"`
	Achievements []string `json:"achievements" bson:"achievements"`
}

type Certification struct {
	ID                  string `json:"id" bson:"id"`
	CertificationName   string `json:"certificationName" bson:"certificationName"`
	IssuingOrganization string `json:"issuingOrganization" bson:"issuingOrganization"`
	IssueDate           string `json:"issueDate" bson:"issueDate"`
	ExpirationDate      string `json:"expirationDate" bson:"expirationDate"`
	CredentialID        string `json:"credentialId" bson:"credentialId"`
	CredentialURL       string `json:"credentialUrl" bson:"credentialUrl"`
}

type Publication struct {
	ID        string `json:"id" bson:"id"`
	Title     string `json:"title" bson:"title"`
	CoAuthors string `json:"coAuthors" bson:"coAuthors"`
	Date      string `json:"date" bson:"date"`
	Publisher string `json:"publisher" bson:"publisher"`
	URL       string `json:"url" bson:"url"`
}

type OpenSourceContribution struct {
	ID               string `json:"id" bson:"id"`
	ProjectName      string `json:"projectName" bson:"projectName"`
	RepoURL          string `json:"repoUrl" bson:"repoUrl"`
	ContributionType string `json:"contributionType" bson:"contributionType"`
	Description      string `json:"description" bson:"description"`
}

type Award struct {
	ID           string `json:"id" bson:"id"`
	AwardName    string `json:"awardName" bson:"awardName"`
	Organization string `json:"organization" bson:"organization"`
	Date         string `json:"date" bson:"date"`
	Description  string `json:"description" bson:"description"`
}

type LanguageSkill struct {
	ID          string `json:"id" bson:"id"`
	Language    string `json:"language" bson:"language"`
	Proficiency string `json:"proficiency" bson:"proficiency"`
}

type VolunteerExperience struct {
	ID           string `json:"id" bson:"id"`
	Organization string `json:"organization" bson:"organization"`
	Role         string `json:"role" bson:"role"`
	StartDate    string `json:"startDate" bson:"startDate"`
	EndDate      string `json:"endDate" bson:"endDate"`
	Description  string `json:"description" bson:"description"`
}

type ReferenceContact struct {
	ID      string `json:"id" bson:"id"`
	Name    string `json:"name" bson:"name"`
	Title   string `json:"title" bson:"title"`
	Company string `json:"company" bson:"company"`
	Email   string `json:"email" bson:"email"`
	Phone   string `json:"phone" bson:"phone"`
}

// TechnicalSkills is a fixed mapping of 8 named skill buckets.
type TechnicalSkills struct {
	ProgrammingLanguages []string `json:"programmingLanguages" bson:"programmingLanguages"`
	FrameworksLibraries  []string `json:"frameworksLibraries" bson:"frameworksLibraries"`
	Databases            []string `json:"databases" bson:"databases"`
	CloudPlatforms       []string `json:"cloudPlatforms" bson:"cloudPlatforms"`
	DevOpsTools          []string `json:"devOpsTools" bson:"devOpsTools"`
	DevelopmentTools     []string `json:"developmentTools" bson:"developmentTools"`
	Methodologies        []string `json:"methodologies" bson:"methodologies"`
	OtherSkills          []string `json:"otherSkills" bson:"otherSkills"`
}

type References struct {
	AvailableUponRequest bool               `json:"availableUponRequest" bson:"availableUponRequest"`
	Contacts             []ReferenceContact `json:"contacts" bson:"contacts"`
}

// ResumeSettings carries rendering preferences. sectionOrder is always a
// permutation of all 14 section keys and sectionsVisibility is total over
// them, with personalInformation pinned visible.
type ResumeSettings struct {
	Template           string             `json:"template" bson:"template"`
	ColorScheme        string             `json:"colorScheme" bson:"colorScheme"`
	FontFamily         string             `json:"fontFamily" bson:"fontFamily"`
	SectionOrder       []SectionKey       `json:"sectionOrder" bson:"sectionOrder"`
	SectionsVisibility map[SectionKey]bool `json:"sectionsVisibility" bson:"sectionsVisibility"`
}

// ResumeDocument is the canonical structured record for one resume variant.
// Array fields are always non-nil after normalization.
type ResumeDocument struct {
	ResumeID                string                   `json:"resumeId,omitempty" bson:"resumeId,omitempty"`
	ResumeTitle             string                   `json:"resumeTitle" bson:"resumeTitle"`
	TargetRole              string                   `json:"targetRole" bson:"targetRole"`
	TargetCompany           string                   `json:"targetCompany" bson:"targetCompany"`
	JobDescription          string                   `json:"jobDescription" bson:"jobDescription"`
	TailoredResumeText      string                   `json:"tailoredResumeText" bson:"tailoredResumeText"`
	PersonalInformation     PersonalInformation      `json:"personalInformation" bson:"personalInformation"`
	ProfessionalSummary     string                   `json:"professionalSummary" bson:"professionalSummary"`
	WorkExperience          []WorkExperience         `json:"workExperience" bson:"workExperience"`
	Education               []Education              `json:"education" bson:"education"`
	TechnicalSkills         TechnicalSkills          `json:"technicalSkills" bson:"technicalSkills"`
	Projects                []Project                `json:"projects" bson:"projects"`
	Certifications          []Certification          `json:"certifications" bson:"certifications"`
	Publications            []Publication            `json:"publications" bson:"publications"`
	OpenSource              []OpenSourceContribution `json:"openSource" bson:"openSource"`
	Awards                  []Award                  `json:"awards" bson:"awards"`
	Languages               []LanguageSkill          `json:"languages" bson:"languages"`
	VolunteerExperience     []VolunteerExperience    `json:"volunteerExperience" bson:"volunteerExperience"`
	ProfessionalMemberships []string                 `json:"professionalMemberships" bson:"professionalMemberships"`
	References              References               `json:"references" bson:"references"`
	ResumeSettings          ResumeSettings           `json:"resumeSettings" bson:"resumeSettings"`
}
