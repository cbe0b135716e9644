package server

import (
	"html/template"
	"strings"

	"hirehi-monitor/internal/models"
)

var jobsPageTemplate = template.Must(template.New("jobs").Parse(`<!DOCTYPE html>
<html lang="ru">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>HireHi — вакансии</title>
<style>
  body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; margin: 0; background: #f5f6f8; color: #1c1e21; }
  header { background: #2b6cb0; color: #fff; padding: 24px 32px; }
  header h1 { margin: 0 0 4px; font-size: 22px; }
  header .meta { font-size: 13px; opacity: .85; }
  main { max-width: 900px; margin: 24px auto; padding: 0 16px; }
  .job { background: #fff; border-radius: 8px; padding: 16px 20px; margin-bottom: 12px; box-shadow: 0 1px 2px rgba(0,0,0,.08); }
  .job h2 { margin: 0 0 6px; font-size: 17px; }
  .job h2 a { color: #2b6cb0; text-decoration: none; }
  .job .tags { font-size: 13px; color: #555; margin-bottom: 8px; }
  .job .tags span { margin-right: 12px; }
  .job p { margin: 6px 0; font-size: 14px; }
  .job button { border: 1px solid #cbd5e0; background: #edf2f7; border-radius: 6px; padding: 4px 12px; font-size: 13px; cursor: pointer; }
  .empty { text-align: center; color: #777; padding: 64px 0; }
</style>
</head>
<body>
<header>
  <h1>Вакансии HireHi</h1>
  {{if .Statistics}}
  <div class="meta">
    найдено {{.Statistics.TotalJobs}}, после фильтра {{.Statistics.FilteredJobs}}
    {{if .Statistics.Keywords}}(ключевые слова: {{.Keywords}}){{end}}
    — обновлено {{.Statistics.LastUpdated}}
  </div>
  {{end}}
</header>
<main>
  {{if .Jobs}}
    {{range .Jobs}}
    <div class="job" id="job-{{.ID}}">
      <h2><a href="{{.URL}}" target="_blank" rel="noopener">{{.Title}}</a></h2>
      <div class="tags">
        <span>{{.Company}}</span>
        <span>{{.Level}}</span>
        <span>{{.Format}}</span>
        {{if .Salary}}<span>{{.Salary}}</span>{{end}}
        {{if .Location}}<span>{{.Location}}</span>{{end}}
      </div>
      {{if .Description}}<p>{{.Description}}</p>{{end}}
      <button onclick="archiveJob('{{.ID}}')">Скрыть</button>
    </div>
    {{end}}
  {{else}}
    <div class="empty">Вакансии не найдены</div>
  {{end}}
</main>
<script>
function archiveJob(id) {
  fetch('/api/archive', {
    method: 'POST',
    headers: {'Content-Type': 'application/json'},
    body: JSON.stringify({jobId: id})
  }).then(function (resp) {
    if (resp.ok) {
      var el = document.getElementById('job-' + id);
      if (el) { el.remove(); }
    }
  });
}
</script>
</body>
</html>
`))

type jobsPageData struct {
	Jobs       []models.Job
	Statistics *models.JobStatistics
	Keywords   string
}

func renderJobsPage(jobs []models.Job, stats *models.JobStatistics) (string, error) {
	data := jobsPageData{
		Jobs:       jobs,
		Statistics: stats,
	}
	if stats != nil {
		data.Keywords = strings.Join(stats.Keywords, ", ")
	}

	var sb strings.Builder
	if err := jobsPageTemplate.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}
