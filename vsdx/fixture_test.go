package vsdx

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/beevik/etree"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

const (
	nsVisio = `xmlns="http://schemas.microsoft.com/office/visio/2012/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"`
	nsRels  = `xmlns="http://schemas.openxmlformats.org/package/2006/relationships"`

	typeMaster = "http://schemas.microsoft.com/visio/2010/relationships/master"
	typePage   = "http://schemas.microsoft.com/visio/2010/relationships/page"
	typeImage  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
)

func testLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
}

func mustDocument(t *testing.T, xml string) *etree.Document {
	t.Helper()

	doc := etree.NewDocument()
	if err := doc.ReadFromString(xml); err != nil {
		t.Fatalf("read xml: %v", err)
	}
	if doc.Root() == nil {
		t.Fatalf("xml has no root element")
	}
	return doc
}

func mustParts(t *testing.T, src map[string]string) Parts {
	t.Helper()

	parts := make(Parts, len(src))
	for name, xml := range src {
		parts[name] = mustDocument(t, xml)
	}
	return parts
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// samplePackage is a small but complete drawing: two masters (connector and a
// nested group), foreground page linked to its background, shapes of every
// kind and connections between them.
func samplePackage() map[string]string {
	return map[string]string{
		DocumentPart: `<VisioDocument ` + nsVisio + `>
  <Colors><ColorEntry IX="5" RGB="#123456"/></Colors>
  <FaceNames><FaceName ID="1" Name="Calibri"/><FaceName ID="2" NameU="Arial"/></FaceNames>
  <StyleSheets>
    <StyleSheet ID="1" NameU="Normal" LineStyle="0" FillStyle="0" TextStyle="0">
      <Cell N="LineWeight" V="0.01"/>
    </StyleSheet>
    <StyleSheet ID="0" NameU="No Style" LineStyle="0" FillStyle="0" TextStyle="0">
      <Cell N="LineColor" V="0"/>
      <Cell N="FillForegnd" V="1"/>
      <Cell N="LeftMargin" V="0.05"/>
      <Section N="Character"><Row IX="0"><Cell N="Size" V="0.1666"/></Row></Section>
    </StyleSheet>
  </StyleSheets>
</VisioDocument>`,

		MastersPart: `<Masters ` + nsVisio + `>
  <Master ID="2" NameU="Dynamic connector"><PageSheet/><Rel r:id="rId1"/></Master>
  <Master ID="3" NameU="Group"><Rel r:id="rId2"/></Master>
</Masters>`,
		"visio/masters/_rels/masters.xml.rels": `<Relationships ` + nsRels + `>
  <Relationship Id="rId1" Type="` + typeMaster + `" Target="master1.xml"/>
  <Relationship Id="rId2" Type="` + typeMaster + `" Target="master2.xml"/>
</Relationships>`,
		"visio/masters/master1.xml": `<MasterContents ` + nsVisio + `>
  <Shapes>
    <Shape ID="5" Type="Shape" LineStyle="1"><Cell N="EndY" V="0"/><Cell N="LinePattern" V="1"/></Shape>
  </Shapes>
</MasterContents>`,
		"visio/masters/master2.xml": `<MasterContents ` + nsVisio + `>
  <Shapes>
    <Shape ID="5" Type="Group">
      <Shapes>
        <Shape ID="6" Type="Shape">
          <Cell N="Width" V="1"/>
          <Shapes><Shape ID="7" Type="Shape"><Cell N="Height" V="2"/></Shape></Shapes>
        </Shape>
      </Shapes>
    </Shape>
  </Shapes>
</MasterContents>`,

		PagesPart: `<Pages ` + nsVisio + `>
  <Page ID="0" NameU="Page-1" BackPage="4">
    <PageSheet>
      <Cell N="PageWidth" V="8.5"/>
      <Cell N="PageHeight" V="11"/>
      <Cell N="DrawingScale" V="1"/>
      <Cell N="DrawingSizeType" V="3"/>
    </PageSheet>
    <Rel r:id="rId1"/>
  </Page>
  <Page ID="4" NameU="Background-1" Background="1" BackPage="0"><Rel r:id="rId2"/></Page>
</Pages>`,
		"visio/pages/_rels/pages.xml.rels": `<Relationships ` + nsRels + `>
  <Relationship Id="rId1" Type="` + typePage + `" Target="page1.xml"/>
  <Relationship Id="rId2" Type="` + typePage + `" Target="page2.xml"/>
</Relationships>`,
		"visio/pages/page1.xml": `<PageContents ` + nsVisio + `>
  <Shapes>
    <Shape ID="1" NameU="Box" LineStyle="1" FillStyle="1" TextStyle="1">
      <Cell N="PinX" V="1"/>
      <Text><cp IX="0"/>Hello<pp IX="0"/> world</Text>
    </Shape>
    <Shape ID="2" NameU="Line"><Cell N="BeginX" V="1"/><Cell N="EndX" V="3"/></Shape>
    <Shape ID="3" NameU="Dynamic connector" Master="2"/>
    <Shape ID="8" NameU="Group" Master="3">
      <Shapes><Shape ID="9" MasterShape="6"/></Shapes>
    </Shape>
    <Shape ID="10" Type="Foreign">
      <ForeignData ForeignType="Bitmap" CompressionType="PNG"><Rel r:id="rId1"/></ForeignData>
    </Shape>
  </Shapes>
  <Connects>
    <Connect FromSheet="3" FromCell="BeginX" FromPart="9" ToSheet="1" ToCell="PinX" ToPart="3"/>
    <Connect FromSheet="3" FromCell="EndX" FromPart="12" ToSheet="8" ToCell="PinX" ToPart="3"/>
  </Connects>
</PageContents>`,
		"visio/pages/_rels/page1.xml.rels": `<Relationships ` + nsRels + `>
  <Relationship Id="rId1" Type="` + typeImage + `" Target="../media/image1.png"/>
</Relationships>`,
		"visio/pages/page2.xml": `<PageContents ` + nsVisio + `>
  <Shapes><Shape ID="1" NameU="Title"><Text>Background</Text></Shape></Shapes>
</PageContents>`,
	}
}

func loadSample(t *testing.T, src map[string]string, media Media) (*Model, error) {
	t.Helper()
	return Load(mustParts(t, src), media, nil, testLogger(t))
}
