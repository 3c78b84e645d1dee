package termdfa

import "testing"

func run(t *testing.T, d *DFA, input string) bool {
	t.Helper()
	state := d.Initial()
	for i := 0; i < len(input); i++ {
		next, ok := d.Step(state, input[i])
		if !ok {
			return false
		}
		state = next
	}
	return d.IsAccept(state)
}

func TestCompileLiteral(t *testing.T) {
	d, err := Compile("abc")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !run(t, d, "abc") {
		t.Error("expected \"abc\" to match")
	}
	if run(t, d, "abd") {
		t.Error("expected \"abd\" not to match")
	}
	if run(t, d, "ab") {
		t.Error("expected partial prefix not to be accepting")
	}
}

func TestCompileCharClassAndStar(t *testing.T) {
	d, err := Compile("[0-9]+")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !run(t, d, "0") {
		t.Error("expected single digit to match")
	}
	if !run(t, d, "1234567890") {
		t.Error("expected digit run to match")
	}
	if run(t, d, "") {
		t.Error("+ requires at least one digit")
	}
	if run(t, d, "12a") {
		t.Error("expected non-digit to break the match")
	}
}

func TestCompileAlternateAndQuest(t *testing.T) {
	d, err := Compile("colou?r")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !run(t, d, "color") || !run(t, d, "colour") {
		t.Error("expected both spellings to match")
	}
	if run(t, d, "colouur") {
		t.Error("expected only zero or one u")
	}
}

func TestCompileBoundedRepeat(t *testing.T) {
	d, err := Compile("a{2,4}")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if run(t, d, "a") {
		t.Error("one a should not satisfy {2,4}")
	}
	if !run(t, d, "aa") || !run(t, d, "aaaa") {
		t.Error("two and four a's should satisfy {2,4}")
	}
	if run(t, d, "aaaaa") {
		t.Error("five a's should exceed {2,4}")
	}
}

func TestCompileUnicodeRange(t *testing.T) {
	d, err := Compile(`[\x{00e9}\x{4e2d}]`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !run(t, d, "é") {
		t.Error("expected e-acute (2-byte utf8) to match")
	}
	if !run(t, d, "中") {
		t.Error("expected CJK character (3-byte utf8) to match")
	}
	if run(t, d, "x") {
		t.Error("expected ascii x not to match")
	}
}

func TestCanStillAcceptPruning(t *testing.T) {
	d, err := Compile("ab")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	state := d.Initial()
	if !d.CanStillAccept(state) {
		t.Error("start state must be able to still accept")
	}
	next, ok := d.Step(state, 'z')
	if ok && d.CanStillAccept(next) {
		t.Error("a dead branch must not report it can still accept")
	}
}
