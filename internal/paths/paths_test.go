package paths

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"", "/"},
		{"/", "/"},
		{"//", "/"},
		{"/api", "api"},
		{"/api/v1/users/", "api/v1/users"},
		{"api/v1", "api/v1"},
		{"//api//", "api"},
	}
	for _, tc := range cases {
		got := Normalize(tc.path)
		if got != tc.want {
			t.Errorf("%q: got %q; want %q", tc.path, got, tc.want)
		}
		if again := Normalize(got); again != got {
			t.Errorf("Normalize(%q): got %q; want %q", got, again, got)
		}
	}
}

func TestTableMatch(t *testing.T) {
	type req struct {
		host string
		path string
		want bool
	}
	cases := []struct {
		desc   string
		global []string
		hosts  map[string][]string
		reqs   []req
	}{
		{
			desc: "zero value",
			reqs: []req{
				{host: "example.com", path: "/", want: false},
				{host: "example.com", path: "/api", want: false},
			},
		}, {
			desc:   "global wildcard",
			global: []string{"/api/*"},
			reqs: []req{
				{host: "example.com", path: "/api/v1/users/", want: true},
				{host: "example.com", path: "/api/", want: false},
				{host: "example.com", path: "/api/x", want: true},
				{host: "example.com", path: "/other", want: false},
				{host: "other.org:8080", path: "/api/v1", want: true},
			},
		}, {
			desc:   "root",
			global: []string{"/"},
			reqs: []req{
				{host: "example.com", path: "/", want: true},
				{host: "example.com", path: "", want: true},
				{host: "example.com", path: "/index.html", want: false},
			},
		}, {
			desc:   "literal with surrounding slashes",
			global: []string{"/users/"},
			reqs: []req{
				{host: "example.com", path: "/users", want: true},
				{host: "example.com", path: "users/", want: true},
				{host: "example.com", path: "/users/1", want: false},
			},
		}, {
			desc:   "catch-all",
			global: []string{"*"},
			reqs: []req{
				{host: "example.com", path: "/", want: true},
				{host: "example.com", path: "/a/b/c", want: true},
			},
		}, {
			desc:   "host-scoped entries replace global ones",
			global: []string{"api/*"},
			hosts: map[string][]string{
				"admin.example.com":      {"admin/*"},
				"localhost:8080":         {"dev/*"},
				"static.example.com:443": {},
			},
			reqs: []req{
				{host: "admin.example.com", path: "/admin/users", want: true},
				{host: "admin.example.com", path: "/api/users", want: false},
				{host: "admin.example.com:8443", path: "/admin/users", want: true},
				{host: "localhost:8080", path: "/dev/x", want: true},
				{host: "localhost:8080", path: "/api/x", want: false},
				{host: "localhost:9090", path: "/api/x", want: true},
				{host: "localhost", path: "/dev/x", want: false},
				{host: "static.example.com:443", path: "/api/x", want: false},
				{host: "www.example.com", path: "/api/x", want: true},
			},
		}, {
			desc:   "prefix and suffix of a pattern cannot overlap",
			global: []string{"/api/*/api"},
			reqs: []req{
				{host: "example.com", path: "/api/api", want: false},
				{host: "example.com", path: "/api//api", want: true},
				{host: "example.com", path: "/api/v1/api", want: true},
			},
		}, {
			desc:   "patterns are matched literally apart from asterisks",
			global: []string{"v1.0/[id]/*"},
			reqs: []req{
				{host: "example.com", path: "/v1.0/[id]/x", want: true},
				{host: "example.com", path: "/v1x0/[id]/x", want: false},
				{host: "example.com", path: "/v1.0/i/x", want: false},
			},
		},
	}
	for _, tc := range cases {
		f := func(t *testing.T) {
			table, errs := Compile(tc.global, tc.hosts)
			if len(errs) > 0 {
				t.Fatalf("unexpected errors: %v", errs)
			}
			for _, r := range tc.reqs {
				got := table.Match(r.host, r.path)
				if got != r.want {
					const tmpl = "Match(%q, %q): got %t; want %t"
					t.Errorf(tmpl, r.host, r.path, got, r.want)
				}
			}
		}
		t.Run(tc.desc, f)
	}
}
