package main

import (
	"fmt"
	"log"

	"github.com/gregLibert/iso8583/pkg/emv"
	"github.com/gregLibert/iso8583/pkg/iso8583"
	"go.uber.org/zap"
)

// purchaseRequest is a POS purchase as captured on the wire, envelope excluded.
const purchaseRequest = "60000300006031003101000200703C06C000C49A1716622424230000006900000000000000111100007914155408242903071000000012313030313639313938343332393030343538323030304200695049303634303430323032303531343030303032343032313036383730303030303031303630363030303036393037303844333930334633393038303856302E302E332E303135360000000000000000241000000000000001459F260846FD62985CAAE7589F2701809F101307011703A00000010A0100000500001EF41C469F37049536C9B89F36020C66950500000000009A032208249C01009F02060000000011115F2A02015682027C009F1A0201569F03060000000000009F330360E9C89F34030000009F3501229F1E0831323334353637388408A0000003330101029F090200309F4104000000010013220007270006000024FF02213436307C30307C32383638387C34333232323834390021534D303136CDC489E91786D0BE01F543D813611BCD3833353932373435"

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Error creating logger: %s", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	layout := iso8583.PosLayout()

	// Step 1: Decode what the terminal sent
	request, err := step1DecodeRequest(layout, logger)
	if err != nil {
		log.Fatalf("Step 1 failed: %v", err)
	}

	// Step 2: Look inside the chip data
	step2DescribeChipData(request)

	// Step 3: Answer it
	response, err := step3BuildResponse(layout, request, logger)
	if err != nil {
		log.Fatalf("Step 3 failed: %v", err)
	}

	// Step 4: Read the answer back the way the terminal would
	if err := step4CheckResponse(layout, response, logger); err != nil {
		log.Fatalf("Step 4 failed: %v", err)
	}

	fmt.Println("\n>> Demo Finished Successfully")
}

// =========================================================================
// Helper Functions
// =========================================================================

func banner(title string) {
	fmt.Println("\n=============================================")
	fmt.Println(" " + title)
	fmt.Println("=============================================")
}

// step1DecodeRequest parses the captured purchase and prints every element.
func step1DecodeRequest(layout *iso8583.Layout, logger *zap.Logger) (*iso8583.Message, error) {
	banner("Step 1: DECODE PURCHASE REQUEST")

	request, err := iso8583.NewDecoder(layout, iso8583.WithLogger(logger)).DecodeHex(purchaseRequest)
	if err != nil {
		return nil, fmt.Errorf("decode failed: %w", err)
	}

	mti, err := request.MTI()
	if err != nil {
		return nil, err
	}
	fmt.Printf(">> MTI %s, bitmap %s\n", mti, request.BitmapHex())
	fmt.Println(request.Format())

	logger.Info("request received", zap.Object("message", request))
	return request, nil
}

// step2DescribeChipData interprets field 55.
func step2DescribeChipData(request *iso8583.Message) {
	banner("Step 2: EMV CHIP DATA (F55)")

	icc, err := emv.ICCDataFromMessage(request)
	if err != nil {
		fmt.Printf("   (!) No usable chip data: %v\n", err)
		return
	}
	fmt.Println(icc.Describe())

	if f, ok := request.Lookup("55.9F26"); ok {
		fmt.Printf("   -> Application cryptogram: %s\n", f.Value())
	}
}

// step3BuildResponse copies the request and changes what an approval changes.
func step3BuildResponse(layout *iso8583.Layout, request *iso8583.Message, logger *zap.Logger) (*iso8583.Message, error) {
	banner("Step 3: BUILD APPROVAL RESPONSE")

	mti, err := request.MTI()
	if err != nil {
		return nil, err
	}
	answer, err := mti.Response()
	if err != nil {
		return nil, err
	}

	response, err := iso8583.NewEncoder(layout, iso8583.WithLogger(logger)).
		From(request).
		Set(iso8583.IndexMTI, answer.Raw).
		Set(37, "X00004002761").
		Set(38, "650852").
		Set(39, "00").
		Set(43, "河南省银隆信息技术有限公司").
		Set(56, "00+成功").
		Build()
	if err != nil {
		return nil, fmt.Errorf("encode failed: %w", err)
	}

	// Terminal-side elements are not echoed back.
	for _, idx := range []iso8583.Index{22, 26, 46, 52, 62, 63} {
		if err := response.Remove(idx); err != nil {
			return nil, err
		}
	}

	fmt.Printf(">> %d bytes on the wire\n", len(response.Bytes()))
	fmt.Println(response.Hex())
	return response, nil
}

// step4CheckResponse decodes the enveloped response and compares it with what was built.
func step4CheckResponse(layout *iso8583.Layout, response *iso8583.Message, logger *zap.Logger) error {
	banner("Step 4: DECODE RESPONSE WITH ENVELOPE")

	decoded, err := iso8583.NewDecoder(layout, iso8583.WithLogger(logger)).DecodeWithLength(response.Bytes())
	if err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}
	if !decoded.Equal(response) {
		return fmt.Errorf("decoded response differs from the one built")
	}

	fmt.Printf(">> Response code %q, MAC block %d bytes\n", decoded.Value(39), len(decoded.MacBlock()))
	return nil
}
