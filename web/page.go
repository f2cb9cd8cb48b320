package web

import (
	"html/template"

	"gitlab.com/lologarithm/greenlife/greenlife"
)

type pageData struct {
	Mode     string
	Temp     float64
	Humidity float64
	Message  template.HTML
	Alarm    bool
}

func newPageData(st greenlife.Status) pageData {
	return pageData{
		Mode:     st.Mode.Label(),
		Temp:     st.Reading.Temp,
		Humidity: st.Reading.Humidity,
		Message:  greenlife.HTML(st.Category),
		Alarm:    st.Alarm,
	}
}

var page = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta http-equiv="refresh" content="5">
  <title>Green Life</title>
  <style>
  body {
    background: #e6ffe6;
    font-family: Arial;
    text-align: center;
    padding: 20px;
  }
  h1 {
    font-size: 48px;
    color: #228B22;
  }
  .sensor {
    font-size: 28px;
    margin-top: 20px;
  }
  .status {
    font-size: 32px;
    color: #333;
    margin-top: 30px;
    font-weight: bold;
  }
  .alarm {
    color: #b22222;
  }
  button {
    font-size: 22px;
    margin-top: 25px;
    padding: 10px 30px;
  }
  </style>
  <script>setTimeout(function(){ location.reload(); }, 5000);</script>
</head>
<body>
  <h1>Green Life</h1>
  <p class="sensor"><strong>Monitoring mode:</strong> {{.Mode}}</p>
  <p class="sensor">Current temperature: {{printf "%.1f" .Temp}} &deg;C</p>
  <p class="sensor">Current humidity: {{printf "%.1f" .Humidity}}%</p>
  <p class="status{{if .Alarm}} alarm{{end}}">{{.Message}}</p>
  <form method="GET" action="/toggle_modo">
    <button type="submit">Toggle mode</button>
  </form>
</body>
</html>
`))
