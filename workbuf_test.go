package vb2

import "testing"

func TestWorkbufAllocAligns(t *testing.T) {
	ctx, status := NewContext(minWorkbufSize, 0)
	if status != Success {
		t.Fatalf("NewContext: %s", status)
	}
	wb := FromCtx(ctx)

	buf, offset, status := wb.Alloc(3)
	if status != Success {
		t.Fatalf("Alloc: %s", status)
	}
	if offset != 0 {
		t.Fatalf("offset = %d, want 0", offset)
	}
	if len(buf) != 3 {
		t.Fatalf("len(buf) = %d, want 3", len(buf))
	}
	if wb.Used() != 8 {
		t.Fatalf("Used() = %d, want 8 (rounded up to workbufAlign)", wb.Used())
	}
}

func TestWorkbufAllocOOM(t *testing.T) {
	ctx, status := NewContext(minWorkbufSize, 0)
	if status != Success {
		t.Fatalf("NewContext: %s", status)
	}
	wb := FromCtx(ctx)

	if _, _, status := wb.Alloc(minWorkbufSize); status != Success {
		t.Fatalf("first alloc of whole arena: %s", status)
	}
	if _, _, status := wb.Alloc(1); status != StatusWorkbufOOM {
		t.Fatalf("second alloc: got %s, want StatusWorkbufOOM", status)
	}
}

func TestWorkbufReallocGrowInPlace(t *testing.T) {
	ctx, status := NewContext(minWorkbufSize, 0)
	if status != Success {
		t.Fatalf("NewContext: %s", status)
	}
	wb := FromCtx(ctx)

	_, offset, status := wb.Alloc(4)
	if status != Success {
		t.Fatalf("Alloc: %s", status)
	}
	grown, status := wb.Realloc(offset, 4, 20)
	if status != Success {
		t.Fatalf("Realloc: %s", status)
	}
	if len(grown) != 20 {
		t.Fatalf("len(grown) = %d, want 20", len(grown))
	}
}

func TestWorkbufReallocRejectsBuriedAllocation(t *testing.T) {
	ctx, status := NewContext(minWorkbufSize, 0)
	if status != Success {
		t.Fatalf("NewContext: %s", status)
	}
	wb := FromCtx(ctx)

	_, firstOffset, status := wb.Alloc(8)
	if status != Success {
		t.Fatalf("Alloc: %s", status)
	}
	if _, _, status := wb.Alloc(8); status != Success {
		t.Fatalf("second Alloc: %s", status)
	}
	if _, status := wb.Realloc(firstOffset, 8, 16); status != StatusWorkbufInvalidRealloc {
		t.Fatalf("Realloc of buried allocation: got %s, want StatusWorkbufInvalidRealloc", status)
	}
}

func TestWorkbufSetUsedPinsAndResets(t *testing.T) {
	ctx, status := NewContext(minWorkbufSize, 0)
	if status != Success {
		t.Fatalf("NewContext: %s", status)
	}
	wb := FromCtx(ctx)

	_, offset, status := wb.Alloc(8)
	if status != Success {
		t.Fatalf("Alloc: %s", status)
	}
	view := WorkbufView{Offset: offset, Length: 8}
	if view.Valid(ctx) {
		t.Fatal("view should not be valid before SetUsed persists workbufUsed")
	}
	if status := wb.SetUsed(ctx, wb.Used()); status != Success {
		t.Fatalf("SetUsed: %s", status)
	}
	if !view.Valid(ctx) {
		t.Fatal("view should be valid once SetUsed has pinned its region")
	}
}

func TestWorkbufSetUsedRejectsGrow(t *testing.T) {
	ctx, status := NewContext(minWorkbufSize, 0)
	if status != Success {
		t.Fatalf("NewContext: %s", status)
	}
	wb := FromCtx(ctx)
	if status := wb.SetUsed(ctx, wb.Used()+1); status != StatusWorkbufUsedShrink {
		t.Fatalf("SetUsed past current high-water mark: got %s, want StatusWorkbufUsedShrink", status)
	}
}

func TestNewContextRejectsTinyWorkbuf(t *testing.T) {
	if _, status := NewContext(minWorkbufSize-1, 0); status != StatusWorkbufSmallSize {
		t.Fatalf("NewContext(tiny): got %s, want StatusWorkbufSmallSize", status)
	}
}
