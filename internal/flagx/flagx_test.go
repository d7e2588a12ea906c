package flagx

import (
	"reflect"
	"testing"
)

func TestFilterArgs_SeparateValue(t *testing.T) {
	args := []string{"-a", ":8080", "-x", "ignored", "-d", "dsn"}
	got := FilterArgs(args, []string{"-a", "-d"})
	want := []string{"-a", ":8080", "-d", "dsn"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestFilterArgs_EqualsForm(t *testing.T) {
	args := []string{"--config=conf.json", "--other=zzz"}
	got := FilterArgs(args, []string{"--config"})
	want := []string{"--config=conf.json"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestFilterArgs_FlagWithoutValue(t *testing.T) {
	args := []string{"-v", "-a", ":9090"}
	got := FilterArgs(args, []string{"-v"})
	want := []string{"-v"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestFilterArgs_Empty(t *testing.T) {
	got := FilterArgs(nil, []string{"-a"})
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
}
