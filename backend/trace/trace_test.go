package trace

import (
	"bytes"
	"errors"
	"testing"

	"github.com/gogpu/gfxcmd/command"
	"github.com/gogpu/gfxcmd/submit"
)

func TestRegistered(t *testing.T) {
	if !submit.IsRegistered(Name) {
		t.Fatalf("%q not registered", Name)
	}
	dev, err := submit.NewDevice(Name)
	if err != nil {
		t.Fatalf("NewDevice(%q) error = %v", Name, err)
	}
	if _, ok := dev.(*Device); !ok {
		t.Errorf("NewDevice(%q) = %T, want *Device", Name, dev)
	}
}

func TestDevice_RecordsCalls(t *testing.T) {
	var w bytes.Buffer
	d := New(WithWriter(&w))

	_ = d.Begin()
	_ = d.BeginRenderPass(command.RenderPassDesc{Label: "main", Target: 2})
	d.DrawElements(command.IndexUint16, 36, 0)
	d.MultiDrawArrays([]uint32{0, 0}, []uint32{3, 3})
	_ = d.EndRenderPass()
	_ = d.End()

	want := "Begin\n" +
		"BeginRenderPass \"main\" target=2 depth=0\n" +
		"  DrawElements u16 count=36 offset=0\n" +
		"  MultiDrawArrays firsts=[0 0] counts=[3 3]\n" +
		"EndRenderPass\n" +
		"End\n"
	if got := d.Log(); got != want {
		t.Errorf("Log() =\n%s\nwant\n%s", got, want)
	}
	if w.String() != want {
		t.Errorf("writer got\n%s\nwant\n%s", w.String(), want)
	}
	if d.Submitted() != 1 {
		t.Errorf("Submitted() = %d, want 1", d.Submitted())
	}

	d.Reset()
	if len(d.Calls()) != 0 || d.Log() != "" {
		t.Error("Reset() kept calls")
	}
}

func TestDevice_UnknownPipeline(t *testing.T) {
	d := New(WithPipelines(1, 2))
	if err := d.BindPipeline(2, command.PipelineGraphics); err != nil {
		t.Errorf("BindPipeline(2) error = %v", err)
	}
	if err := d.BindPipeline(3, command.PipelineGraphics); !errors.Is(err, ErrUnknownPipeline) {
		t.Errorf("BindPipeline(3) error = %v, want %v", err, ErrUnknownPipeline)
	}
}

func TestDevice_EndWithoutBegin(t *testing.T) {
	if err := New().End(); !errors.Is(err, ErrNotEncoding) {
		t.Errorf("End() error = %v, want %v", err, ErrNotEncoding)
	}
}
