package server

import (
	"html/template"
	"time"

	"github.com/vector76/news_server/internal/model"
)

var templateFuncs = template.FuncMap{
	"fmtTime": func(t time.Time) template.HTML {
		utc := t.UTC().Format(time.RFC3339)
		display := t.UTC().Format("2006-01-02 15:04")
		return template.HTML(`<time datetime="` + utc + `">` + display + `</time>`)
	},
	"fmtDate": func(t time.Time) string {
		return t.UTC().Format("02.01.2006")
	},
	"markdown": renderMarkdown,
	"url":      URL,
	"owns": func(c model.Comment, u any) bool {
		switch u := u.(type) {
		case model.User:
			return c.OwnedBy(&u)
		case *model.User:
			return c.OwnedBy(u)
		}
		return false
	},
}

var baseTmpl = template.Must(template.New("base").Funcs(templateFuncs).Parse(`<!DOCTYPE html>
<html{{if .theme}} data-theme="{{.theme}}"{{end}}>
<head>
<meta charset="utf-8">
<title>{{block "title" .}}Новости{{end}}</title>
<style>
  :root {
    --color-text: #222;
    --color-bg-page: #fff;
    --color-link: #0366d6;
    --color-bg-badge: #f0f0f0;
    --color-bg-subtle: #fafafa;
    --color-border-light: #eee;
    --color-border: #ddd;
    --color-text-secondary: #666;
    --color-error: #b00020;
  }
  [data-theme="dark"] {
    --color-text: #e0e0e0;
    --color-bg-page: #121212;
    --color-link: #58a6ff;
    --color-bg-badge: #333;
    --color-bg-subtle: #1a1a1a;
    --color-border-light: #333;
    --color-border: #444;
    --color-text-secondary: #aaa;
    --color-error: #ff6b6b;
  }
  body { font-family: sans-serif; margin: 2em; color: var(--color-text); background: var(--color-bg-page); }
  a { color: var(--color-link); text-decoration: none; }
  a:hover { text-decoration: underline; }
  nav { display: flex; gap: 1em; align-items: center; margin-bottom: 1.5em; border-bottom: 1px solid var(--color-border); padding-bottom: 0.5em; }
  nav form { display: inline; margin: 0; }
  .news { margin-bottom: 1.5em; }
  .meta { font-size: 0.85em; color: var(--color-text-secondary); }
  .text { background: var(--color-bg-subtle); border: 1px solid var(--color-border-light); padding: 1em; border-radius: 4px; margin-bottom: 1em; }
  .comment { border: 1px solid var(--color-border-light); padding: 0.8em; margin-bottom: 0.5em; border-radius: 4px; }
  .comment-text { white-space: pre-wrap; }
  .errors { color: var(--color-error); }
  textarea { width: 100%; min-height: 6em; }
  .theme-toggle { position: fixed; top: 1em; right: 1em; padding: 0.4em 0.8em; border: 1px solid var(--color-border); border-radius: 4px; background: var(--color-bg-badge); color: var(--color-text); cursor: pointer; font-size: 0.9em; }
</style>
</head>
<body>
<button class="theme-toggle" aria-label="Toggle dark mode">{{if eq .theme "dark"}}☀️{{else}}🌙{{end}}</button>
<nav>
  <a href="{{url "news:home"}}">Главная</a>
  {{if .user}}
  <span>{{.user.Username}}</span>
  <form method="post" action="{{url "users:logout"}}"><button type="submit">Выйти</button></form>
  {{else}}
  <a href="{{url "users:login"}}">Войти</a>
  <a href="{{url "users:signup"}}">Регистрация</a>
  {{end}}
</nav>
{{template "content" .}}
<script>
document.querySelectorAll("time[datetime]").forEach(function(el) {
  var d = new Date(el.getAttribute("datetime"));
  if (isNaN(d)) return;
  var pad = function(n) { return n < 10 ? "0" + n : "" + n; };
  el.textContent = d.getFullYear() + "-" + pad(d.getMonth()+1) + "-" + pad(d.getDate()) +
    " " + pad(d.getHours()) + ":" + pad(d.getMinutes());
});
var html = document.documentElement;
if (!html.hasAttribute("data-theme")) {
  html.setAttribute("data-theme", window.matchMedia("(prefers-color-scheme: dark)").matches ? "dark" : "light");
}
var themeBtn = document.querySelector("[aria-label=\"Toggle dark mode\"]");
function syncToggleBtn() {
  if (themeBtn) { themeBtn.textContent = html.getAttribute("data-theme") === "dark" ? "☀️" : "🌙"; }
}
syncToggleBtn();
if (themeBtn) {
  themeBtn.addEventListener("click", function() {
    var next = html.getAttribute("data-theme") === "dark" ? "light" : "dark";
    html.setAttribute("data-theme", next);
    document.cookie = "theme=" + next + "; path=/; max-age=31536000";
    syncToggleBtn();
  });
}
</script>
</body>
</html>
{{define "field-errors"}}{{range .}}<div class="errors">{{.}}</div>{{end}}{{end}}
`))

// page builds a template from the base layout and a "content" definition.
func page(content string) *template.Template {
	return template.Must(template.Must(baseTmpl.Clone()).Parse(content))
}

var homeTmpl = page(`{{define "content"}}
<h1>Новости</h1>
{{range .object_list}}<div class="news">
<h2><a href="{{url "news:detail" .ID}}">{{.Title}}</a></h2>
<div class="meta">{{fmtDate .Date}} &middot; комментариев: {{.CommentCount}}</div>
</div>
{{else}}<p>Новостей пока нет.</p>
{{end}}{{end}}`)

var detailTmpl = page(`{{define "title"}}{{.news.Title}}{{end}}{{define "content"}}
<h1>{{.news.Title}}</h1>
<div class="meta">{{fmtDate .news.Date}}</div>
<div class="text">{{.news.HTML}}</div>

<h3 id="comments">Комментарии ({{len .news.Comments}})</h3>
{{range .news.Comments}}<div class="comment">
<div class="meta"><strong>{{.Author}}</strong> &middot; {{fmtTime .Created}}
{{if owns . $.user}} &middot; <a href="{{url "news:edit" .ID}}">Редактировать</a> &middot; <a href="{{url "news:delete" .ID}}">Удалить</a>{{end}}</div>
<div class="comment-text">{{.Text}}</div>
</div>
{{end}}

{{if .form}}
<form method="post" action="{{url "news:detail" .news.ID}}">
{{template "field-errors" index .form.Errors "text"}}
<textarea name="text">{{.form.Text}}</textarea>
<button type="submit">Отправить</button>
</form>
{{else}}
<p><a href="{{url "users:login"}}?next={{url "news:detail" .news.ID}}">Войдите</a>, чтобы оставить комментарий.</p>
{{end}}{{end}}`)

var editTmpl = page(`{{define "content"}}
<h1>Редактирование комментария</h1>
<form method="post" action="{{url "news:edit" .comment.ID}}">
{{template "field-errors" index .form.Errors "text"}}
<textarea name="text">{{.form.Text}}</textarea>
<button type="submit">Сохранить</button>
</form>
<p><a href="{{url "news:detail" .comment.NewsID}}#comments">Отмена</a></p>
{{end}}`)

var deleteTmpl = page(`{{define "content"}}
<h1>Удаление комментария</h1>
<div class="comment"><div class="comment-text">{{.comment.Text}}</div></div>
<form method="post" action="{{url "news:delete" .comment.ID}}">
<button type="submit">Удалить</button>
</form>
<p><a href="{{url "news:detail" .comment.NewsID}}#comments">Отмена</a></p>
{{end}}`)

var loginTmpl = page(`{{define "title"}}Вход{{end}}{{define "content"}}
<h1>Вход</h1>
<form method="post" action="{{url "users:login"}}">
{{template "field-errors" index .form.Errors "__all__"}}
<p><label>Имя пользователя <input name="username" value="{{.form.Username}}"></label></p>
{{template "field-errors" index .form.Errors "username"}}
<p><label>Пароль <input type="password" name="password"></label></p>
{{template "field-errors" index .form.Errors "password"}}
<input type="hidden" name="next" value="{{.form.Next}}">
<button type="submit">Войти</button>
</form>
{{end}}`)

var loggedOutTmpl = page(`{{define "title"}}Выход{{end}}{{define "content"}}
<h1>Вы вышли из своей учётной записи.</h1>
<p><a href="{{url "users:login"}}">Войти снова</a></p>
{{end}}`)

var signupTmpl = page(`{{define "title"}}Регистрация{{end}}{{define "content"}}
<h1>Регистрация</h1>
<form method="post" action="{{url "users:signup"}}">
<p><label>Имя пользователя <input name="username" value="{{.form.Username}}"></label></p>
{{template "field-errors" index .form.Errors "username"}}
<p><label>Пароль <input type="password" name="password1"></label></p>
{{template "field-errors" index .form.Errors "password1"}}
<p><label>Подтверждение пароля <input type="password" name="password2"></label></p>
{{template "field-errors" index .form.Errors "password2"}}
<button type="submit">Зарегистрироваться</button>
</form>
{{end}}`)

var notFoundTmpl = page(`{{define "title"}}Страница не найдена{{end}}{{define "content"}}
<h1>Страница не найдена</h1>
<p><a href="{{url "news:home"}}">На главную</a></p>
{{end}}`)
