package clinical

// Column names of the clinical-case dataset that the analysis reads directly.
const (
	ColCaseID      = "caseid"
	ColSubjectID   = "subjectid"
	ColAneStart    = "anestart"
	ColAneEnd      = "aneend"
	ColOpStart     = "opstart"
	ColOpEnd       = "opend"
	ColAge         = "age"
	ColSex         = "sex"
	ColHeight      = "height"
	ColWeight      = "weight"
	ColASA         = "asa"
	ColDiagnosis   = "dx"
	ColOpName      = "opname"
	ColApproach    = "approach"
	ColAneType     = "ane_type"
	ColHTN         = "preop_htn"
	ColDM          = "preop_dm"
	ColAneDuration = "total anesthesia time (hrs)"
	ColOpDuration  = "total surgery time (hrs)"
)

// KnownColumns is the enumerated key set of a case record, in dataset order.
// Times are seconds relative to casestart.
var KnownColumns = []string{
	"caseid", "subjectid",
	"casestart", "caseend", "anestart", "aneend", "opstart", "opend", "adm", "dis",
	"icu_days", "death_inhosp",
	"age", "sex", "height", "weight", "bmi", "asa", "emop",
	"department", "optype", "dx", "opname", "approach", "position", "ane_type",
	"preop_htn", "preop_dm", "preop_ecg", "preop_pft",
	"preop_hb", "preop_plt", "preop_pt", "preop_aptt", "preop_na", "preop_k",
	"preop_gluc", "preop_alb", "preop_ast", "preop_alt", "preop_bun", "preop_cr",
	"preop_ph", "preop_hco3", "preop_be", "preop_pao2", "preop_paco2", "preop_sao2",
	"cormack", "airway", "tubesize", "dltubesize", "lmasize",
	"iv1", "iv2", "aline1", "aline2", "cline1", "cline2",
	"intraop_ebl", "intraop_uo", "intraop_rbc", "intraop_ffp",
	"intraop_crystalloid", "intraop_colloid",
	"intraop_ppf", "intraop_mdz", "intraop_ftn", "intraop_rocu", "intraop_vecu",
	"intraop_eph", "intraop_phe", "intraop_epi", "intraop_ca",
}

// DerivedColumns are produced by analysis, never read from input files.
var DerivedColumns = []string{ColAneDuration, ColOpDuration}

var knownSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(KnownColumns)+len(DerivedColumns))
	for _, c := range KnownColumns {
		m[c] = struct{}{}
	}
	for _, c := range DerivedColumns {
		m[c] = struct{}{}
	}
	return m
}()

// IsKnownColumn reports whether name belongs to the record schema.
func IsKnownColumn(name string) bool {
	_, ok := knownSet[name]
	return ok
}
