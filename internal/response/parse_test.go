package response

import (
	"reflect"
	"testing"
)

func TestParseList_CodeFence(t *testing.T) {
	r := ParseList("```json\n[\"X.java\",\"Y.java\"]\n```")
	if r.Outcome != Found {
		t.Fatalf("outcome: got %v, want found", r.Outcome)
	}
	want := []string{"X.java", "Y.java"}
	if !reflect.DeepEqual(r.Names(), want) {
		t.Errorf("got %v, want %v", r.Names(), want)
	}
}

func TestParseList(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		outcome Outcome
		want    []string
	}{
		{"plain", `["file1.txt", "file2.txt"]`, Found, []string{"file1.txt", "file2.txt"}},
		{"surrounded by prose", `Here are the files: ["a.go", "b.go"] hope this helps`, Found, []string{"a.go", "b.go"}},
		{"empty list", "[]", Found, []string{}},
		{"no brackets", "Some text without brackets", NoList, []string{}},
		{"empty input", "", NoList, []string{}},
		{"opening only", "list: [\"a\"", NoList, []string{}},
		{"closing before opening", "] then [\"a\"]", Found, []string{"a"}},
		{"unquoted tokens", "[file1.txt, file2.txt]", Malformed, []string{}},
		{"trailing comma", `["a", "b",]`, Malformed, []string{}},
		{"non-string elements", `[1, 2]`, Malformed, []string{}},
		{"first pair wins", `["first"] and later ["second"]`, Found, []string{"first"}},
		{"nested stops at first close", `[["a"], ["b"]]`, Malformed, []string{}},
		{"multiline", "Files:\n[\n  \"pom.xml\",\n  \"App.java\"\n]\nDone.", Found, []string{"pom.xml", "App.java"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ParseList(tt.text)
			if r.Outcome != tt.outcome {
				t.Errorf("outcome: got %v, want %v", r.Outcome, tt.outcome)
			}
			if !reflect.DeepEqual(r.Names(), tt.want) {
				t.Errorf("names: got %#v, want %#v", r.Names(), tt.want)
			}
		})
	}
}

func TestParseList_MalformedKeepsError(t *testing.T) {
	r := ParseList(`prefix [broken, "json"] suffix`)
	if r.Outcome != Malformed {
		t.Fatalf("outcome: got %v", r.Outcome)
	}
	if r.Err == nil {
		t.Error("malformed result should carry the decode error")
	}
	if r.Span != `[broken, "json"]` {
		t.Errorf("span: got %q", r.Span)
	}
}

func TestResult_NamesNeverNil(t *testing.T) {
	var r Result
	if r.Names() == nil {
		t.Error("zero Result should return an empty, non-nil slice")
	}
}

func TestOutcome_String(t *testing.T) {
	if Found.String() != "found" || Malformed.String() != "malformed" || NoList.String() != "no list" {
		t.Error("unexpected outcome strings")
	}
}
