package endpoints

import (
	"html/template"
	"net/http"

	"gcp-health-agent/internal/agent"
	"gcp-health-agent/internal/util"
)

// Form serves the single-page project picker. Submitting the form runs the
// same contained report path as the CLI, so an upstream failure renders as
// "N/A" values instead of a failed request.
type Form struct {
	logger   *util.AgentLogger
	agent    *agent.HealthAgent
	projects []string
	tmpl     *template.Template
}

type indexData struct {
	Projects []string
	Result   *HealthResult
	Error    string
}

func (f *Form) Init(a *agent.HealthAgent, projects []string, logger *util.AgentLogger) {
	f.agent = a
	f.projects = projects
	f.logger = logger
	f.tmpl = template.Must(template.New("index").Parse(indexTemplate))
}

func (f *Form) IndexHandler(w http.ResponseWriter, r *http.Request) {
	data := indexData{Projects: f.projects}

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			f.logger.LogEvent(util.LOG_LEVEL_ERROR, "While parsing form. Err - ", err)
			http.Error(w, "invalid form data", http.StatusBadRequest)
			return
		}
		project := r.PostFormValue("project_id")
		if project != "" {
			if !f.knownProject(project) {
				f.logger.LogEvent(util.LOG_LEVEL_WARN, "Form submitted for unknown project - ", project)
				w.WriteHeader(http.StatusBadRequest)
				data.Error = "Unknown project: " + project
			} else {
				result := NewHealthResult(f.agent.Report(r.Context(), project))
				data.Result = &result
			}
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := f.tmpl.Execute(w, data); err != nil {
		f.logger.LogEvent(util.LOG_LEVEL_ERROR, "While rendering index template. Err - ", err)
	}
}

func (f *Form) knownProject(project string) bool {
	for _, p := range f.projects {
		if p == project {
			return true
		}
	}
	return false
}
